package config

import (
	"fmt"
	"reflect"
)

// Flatten returns cfg as dotted koanf keys mapped to display strings, the
// same keys accepted in YAML files and SCENELINK_* variables. Callers that
// print the result should Sanitize first.
func Flatten(cfg *ScenelinkConfig) map[string]string {
	out := make(map[string]string)
	flatten(reflect.ValueOf(cfg).Elem(), "", out)
	return out
}

func flatten(v reflect.Value, prefix string, out map[string]string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		key := t.Field(i).Tag.Get("koanf")
		if key == "" {
			continue
		}
		if prefix != "" {
			key = prefix + "." + key
		}
		f := v.Field(i)
		if f.Kind() == reflect.Struct {
			flatten(f, key, out)
			continue
		}
		out[key] = fmt.Sprint(f.Interface())
	}
}
