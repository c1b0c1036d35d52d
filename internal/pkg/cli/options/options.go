// Package options resolves the CLI configuration from flags, ENV variables
// and ".env" files. Flag has the highest priority, then OS ENVs, then the
// ".env" files from the working directory.
package options

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bluecarto/geoloader/internal/pkg/env"
	"github.com/bluecarto/geoloader/internal/pkg/log"
	"github.com/bluecarto/geoloader/internal/pkg/utils/errors"
)

// Options is a flat key/value store of the parsed configuration.
// Keys are the flag names, ENV variables map to them by the naming
// convention, "db-password" is filled from GEOLOADER_DB_PASSWORD.
type Options struct {
	envNaming        *env.NamingConvention
	envs             *env.Map
	WorkingDirectory string
	*viper.Viper
}

func NewOptions() *Options {
	return &Options{
		envNaming: env.NewNamingConvention(),
		envs:      env.Empty(),
		Viper:     viper.New(),
	}
}

// Load binds the flags and fills unset ones from the ENVs.
func (o *Options) Load(logger log.Logger, osEnvs *env.Map, flags *pflag.FlagSet) error {
	workingDir, err := workingDirectory(flags)
	if err != nil {
		return err
	}
	o.WorkingDirectory = workingDir

	// OS ENVs take precedence over the ".env" files.
	o.envs = env.LoadDotEnv(logger, osEnvs, []string{workingDir})

	if err := o.BindPFlags(flags); err != nil {
		return err
	}

	// An ENV value becomes the default of its flag, so an explicit flag
	// still wins.
	flags.VisitAll(func(flag *pflag.Flag) {
		if value, found := o.envs.Lookup(o.envNaming.Replace(flag.Name)); found {
			o.SetDefault(flag.Name, value)
		}
	})
	return nil
}

// Envs returns the resolved environment, OS values merged with ".env" files.
func (o *Options) Envs() *env.Map {
	return o.envs
}

// Dump formats the options for verbose output, secret values are masked.
func (o *Options) Dump() string {
	var out strings.Builder
	out.WriteString("Parsed options:\n")

	keys := o.AllKeys()
	sort.Strings(keys)
	for _, key := range keys {
		value := fmt.Sprintf("%v", o.Get(key))
		if isSecretKey(key) && len(value) > 0 {
			value = maskSecret(value)
		}
		out.WriteString(fmt.Sprintf("  %s = %q\n", key, value))
	}
	return out.String()
}

func isSecretKey(key string) bool {
	for _, marker := range []string{"password", "token", "secret"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

// maskSecret keeps the first 7 characters of a long secret so it can still
// be told apart in a dump, short secrets are hidden whole.
func maskSecret(value string) string {
	if len(value) <= 10 {
		return "*****"
	}
	return value[:7] + "*****"
}

func workingDirectory(flags *pflag.FlagSet) (string, error) {
	if flag := flags.Lookup("working-dir"); flag != nil && flag.Value.String() != "" {
		return strings.TrimRight(flag.Value.String(), string(os.PathSeparator)), nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "cannot get the working directory")
	}
	return dir, nil
}
