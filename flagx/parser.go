// Package flagx binds tagged struct fields to command line flags
//
//	type runFlags struct {
//	    ConfigDir string        `flag:"config,c" usage:"config directory" default:"configs"`
//	    Timeout   time.Duration `flag:"timeout" usage:"startup timeout"`
//	    Set       []string      `flag:"set" usage:"key=value override"`
//	}
//
//	var opts runFlags
//	flagx.BindFlags(root.PersistentFlags(), &opts)
//	...
//	flagx.ParseFlags(cmd.Flags(), &opts)
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var durationType = reflect.TypeOf(time.Duration(0))

type fieldFlag struct {
	index    int
	name     string
	short    string
	usage    string
	def      string
	required bool
}

// fields tagged fields of a struct pointer
func fields(target any) (reflect.Value, []fieldFlag, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("target must be a pointer to struct, got %T", target)
	}
	v = v.Elem()
	t := v.Type()

	var out []fieldFlag
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("flag")
		if tag == "" || !f.IsExported() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, fieldFlag{
			index:    i,
			name:     name,
			short:    short,
			usage:    f.Tag.Get("usage"),
			def:      f.Tag.Get("default"),
			required: f.Tag.Get("required") == "true",
		})
	}
	return v, out, nil
}

// BindFlags registers one flag per tagged field. Required flags are returned so
// the caller can mark them on its command.
func BindFlags(fs *pflag.FlagSet, target any) (required []string, err error) {
	v, flags, err := fields(target)
	if err != nil {
		return nil, err
	}

	for _, f := range flags {
		field := v.Type().Field(f.index)
		if err := registerFlag(fs, field.Type, f); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		if f.required {
			required = append(required, f.name)
		}
	}
	return required, nil
}

func registerFlag(fs *pflag.FlagSet, typ reflect.Type, f fieldFlag) error {
	if typ == durationType {
		def, err := parseDefault(f.def, time.ParseDuration)
		if err != nil {
			return err
		}
		fs.DurationP(f.name, f.short, def, f.usage)
		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		fs.StringP(f.name, f.short, f.def, f.usage)
	case reflect.Int:
		def, err := parseDefault(f.def, strconv.Atoi)
		if err != nil {
			return err
		}
		fs.IntP(f.name, f.short, def, f.usage)
	case reflect.Bool:
		def, err := parseDefault(f.def, strconv.ParseBool)
		if err != nil {
			return err
		}
		fs.BoolP(f.name, f.short, def, f.usage)
	case reflect.Slice:
		if typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", typ.Elem().Kind())
		}
		var def []string
		if f.def != "" {
			def = strings.Split(f.def, ",")
		}
		fs.StringArrayP(f.name, f.short, def, f.usage)
	default:
		return fmt.Errorf("unsupported field type: %s", typ.Kind())
	}
	return nil
}

func parseDefault[T any](s string, parse func(string) (T, error)) (T, error) {
	var zero T
	if s == "" {
		return zero, nil
	}
	v, err := parse(s)
	if err != nil {
		return zero, fmt.Errorf("invalid default %q: %w", s, err)
	}
	return v, nil
}

// ParseFlags copies flag values into the tagged fields
func ParseFlags(fs *pflag.FlagSet, target any) error {
	v, flags, err := fields(target)
	if err != nil {
		return err
	}

	for _, f := range flags {
		field := v.Field(f.index)
		if err := setFieldValue(fs, field, f.name); err != nil {
			return fmt.Errorf("parse field %s: %w", v.Type().Field(f.index).Name, err)
		}
	}
	return nil
}

func setFieldValue(fs *pflag.FlagSet, field reflect.Value, name string) error {
	if field.Type() == durationType {
		val, err := fs.GetDuration(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		val, err := fs.GetString(name)
		if err != nil {
			return err
		}
		field.SetString(val)
	case reflect.Int:
		val, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))
	case reflect.Bool:
		val, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		field.SetBool(val)
	case reflect.Slice:
		val, err := fs.GetStringArray(name)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(val))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
