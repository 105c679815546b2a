// Package registry loads the application registry (config/apps.yaml) and
// computes which applications are new relative to a base revision.
//
// Two on-disk shapes are accepted under the top-level "applications" key:
//
//	# list shape
//	applications:
//	  - app_name: billing-svc
//	    jira: OPS-12
//	    envs: [dev, prod]
//
//	# map shape
//	applications:
//	  billing-svc:
//	    jira: OPS-12
//	    envs: [dev, prod]
//
// Both are normalized at load time into a Registry that preserves document
// order. Nothing outside this package sees the raw shapes.
package registry
