package config

import (
	"os"

	"github.com/spf13/viper"
)

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// SourceOf reports which layer supplied key. Flags win over environment,
// environment over file, file over defaults.
func SourceOf(v *viper.Viper, key string, flagChanged bool) Source {
	if flagChanged {
		return SourceFlag
	}
	if env, ok := envBindings[key]; ok && lookupEnv(env) {
		return SourceEnv
	}
	if v.ConfigFileUsed() != "" && v.InConfig(key) {
		return SourceFile
	}
	return SourceDefault
}

func lookupEnv(name string) bool {
	v, ok := os.LookupEnv(name)
	return ok && v != ""
}
