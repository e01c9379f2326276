package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

// ApplyOverrides patches p's fields named by overrides, each a
// "name=value" string as cobra collects from a repeated --set flag.
// Names are free-form (kebab-case, as cobra flags conventionally are,
// or snake_case matching the YAML tag directly) and are normalised to
// the struct's yaml tag via iancoleman/strcase, so --set paws-init=5
// on the command line and a paws_init: 5 key in run.yaml resolve to
// the same Params field.
func ApplyOverrides(p *Params, overrides []string) error {
	if len(overrides) == 0 {
		return nil
	}
	v := reflect.ValueOf(p).Elem()
	t := v.Type()

	byTag := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("yaml"); tag != "" {
			byTag[tag] = i
		}
	}

	for _, o := range overrides {
		name, value, ok := strings.Cut(o, "=")
		if !ok {
			return fmt.Errorf("config: invalid override %q, want name=value", o)
		}
		idx, ok := byTag[strcase.ToSnake(name)]
		if !ok {
			return fmt.Errorf("config: unknown parameter %q", name)
		}
		if err := setField(v.Field(idx), value); err != nil {
			return fmt.Errorf("config: set %q: %w", name, err)
		}
	}
	return nil
}

func setField(f reflect.Value, value string) error {
	switch f.Kind() {
	case reflect.String:
		f.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint64:
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Float64, reflect.Float32:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.SetFloat(n)
	default:
		return fmt.Errorf("unsupported field kind %s", f.Kind())
	}
	return nil
}
