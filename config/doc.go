// Package config resolves the run configuration for appforge.
//
// Values are layered with viper, highest priority first:
//  1. Command-line flags bound onto the viper instance
//  2. CI environment variables (PR_NUMBER, GITHUB_ACTOR, APP_ID, ...)
//  3. An optional .appforge.yaml in the working directory, or --config
//  4. Built-in defaults
//
// # Basic Usage
//
//	v := config.NewViper()
//	_ = v.BindPFlag("base_branch", cmd.Flags().Lookup("base-branch"))
//	cfg, err := config.Load(v, "")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// SourceOf reports which layer supplied a given key, for diagnostics.
package config
