package config

import (
	"errors"

	"github.com/spf13/viper"
)

// bindAll binds config keys to environment variables, key -> variable.
func bindAll(v *viper.Viper, bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
