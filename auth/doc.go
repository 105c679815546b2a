// Package auth obtains credentials for writing to repositories as a GitHub App.
//
// A GitHub App authenticates in two steps: it signs a short-lived RS256 JWT
// with its private key, then exchanges that JWT for an installation access
// token scoped to one installation.
//
// # App JWT
//
//	key, err := auth.LoadPrivateKey(os.Getenv("APP_KEY")) // PEM or path
//	token, err := auth.GenerateAppJWT(auth.AppJWTConfig{
//	    AppID: "12345",
//	    Key:   key,
//	})
//
// # Installation tokens
//
//	src := &auth.InstallationTokenSource{
//	    AppID:          "12345",
//	    InstallationID: 678,
//	    Key:            key,
//	}
//	cred, err := src.Token(ctx)
//	if errors.Is(err, auth.ErrCredentialUnavailable) {
//	    // fatal
//	}
//
// A Credential is a plain value. Callers pass it explicitly to every remote
// operation that needs it; nothing is stored in the process environment.
package auth
