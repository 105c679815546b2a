// Package render generates a new application directory from the template
// application, rewriting the template's identifier to the new one.
//
// The identifier is rewritten in four textual variants, in this order:
//
//	test-one  -> billing-svc   (lower, hyphens kept)
//	TEST_ONE  -> BILLING_SVC   (upper, hyphens to underscores)
//	Test-One  -> Billing-Svc   (title, hyphens kept)
//	TEST-ONE  -> BILLING-SVC   (upper, hyphens kept)
//
// Replacement is literal, so identifiers may contain any characters.
//
// Basic usage:
//
//	r := render.New("applications", render.WithLogger(logger))
//	result, err := r.Render("billing-svc", []string{"dev", "prod"})
//	if errors.Is(err, render.ErrTemplateMissing) {
//	    // fatal
//	}
package render
