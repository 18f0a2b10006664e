// Package flagx binds cobra flags to tagged request structs
//
//	type getRequest struct {
//	    Key    string `flag:"key,k" usage:"cache key" required:"true"`
//	    Prefix string `flag:"prefix" default:"cache"`
//	}
package flagx

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Hycient195/academia-pro-cache/validator"
	"github.com/spf13/cobra"
)

var durationType = reflect.TypeOf(time.Duration(0))

type flagDef struct {
	name       string
	short      string
	usage      string
	defaultVal string
	required   bool
}

func parseTag(field reflect.StructField) (flagDef, bool) {
	tag := field.Tag.Get("flag")
	if tag == "" {
		return flagDef{}, false
	}
	parts := strings.Split(tag, ",")
	fd := flagDef{
		name:       parts[0],
		usage:      field.Tag.Get("usage"),
		defaultVal: field.Tag.Get("default"),
		required:   field.Tag.Get("required") == "true",
	}
	if len(parts) > 1 {
		fd.short = parts[1]
	}
	return fd, true
}

func structValue(target interface{}) (reflect.Value, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("target must be a pointer to struct")
	}
	return v.Elem(), nil
}

// BindFlags registers one flag per tagged field of target
func BindFlags(cmd *cobra.Command, target interface{}) error {
	v, err := structValue(target)
	if err != nil {
		return err
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fd, ok := parseTag(t.Field(i))
		if !ok {
			continue
		}
		if err := registerFlag(cmd, t.Field(i).Type, fd); err != nil {
			return fmt.Errorf("bind field %s: %w", t.Field(i).Name, err)
		}
		if fd.required {
			_ = cmd.MarkFlagRequired(fd.name)
		}
	}
	return nil
}

func registerFlag(cmd *cobra.Command, typ reflect.Type, fd flagDef) error {
	flags := cmd.Flags()

	if typ == durationType {
		var def time.Duration
		if fd.defaultVal != "" {
			d, err := time.ParseDuration(fd.defaultVal)
			if err != nil {
				return fmt.Errorf("invalid default %q: %w", fd.defaultVal, err)
			}
			def = d
		}
		flags.DurationP(fd.name, fd.short, def, fd.usage)
		return nil
	}

	switch typ.Kind() {
	case reflect.String:
		flags.StringP(fd.name, fd.short, fd.defaultVal, fd.usage)
	case reflect.Int:
		def := 0
		if fd.defaultVal != "" {
			def, _ = strconv.Atoi(fd.defaultVal)
		}
		flags.IntP(fd.name, fd.short, def, fd.usage)
	case reflect.Bool:
		def := false
		if fd.defaultVal != "" {
			def, _ = strconv.ParseBool(fd.defaultVal)
		}
		flags.BoolP(fd.name, fd.short, def, fd.usage)
	case reflect.Slice:
		if typ.Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice element type: %s", typ.Elem().Kind())
		}
		flags.StringSliceP(fd.name, fd.short, nil, fd.usage)
	default:
		return fmt.Errorf("unsupported field type: %s", typ.Kind())
	}
	return nil
}

// ParseFlags copies flag values into the tagged fields of target
func ParseFlags(cmd *cobra.Command, target interface{}) error {
	v, err := structValue(target)
	if err != nil {
		return err
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		fd, ok := parseTag(t.Field(i))
		if !ok || !field.CanSet() {
			continue
		}
		if err := setFieldValue(cmd, field, fd.name); err != nil {
			return fmt.Errorf("parse field %s: %w", t.Field(i).Name, err)
		}
	}
	return nil
}

func setFieldValue(cmd *cobra.Command, field reflect.Value, name string) error {
	flags := cmd.Flags()

	if field.Type() == durationType {
		val, err := flags.GetDuration(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		val, err := flags.GetString(name)
		if err != nil {
			return err
		}
		field.SetString(val)
	case reflect.Int:
		val, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		field.SetInt(int64(val))
	case reflect.Bool:
		val, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		field.SetBool(val)
	case reflect.Slice:
		val, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(val))
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Parse fills target from flags and validates it when it is validator.Validatable
func Parse(cmd *cobra.Command, target interface{}) error {
	if err := ParseFlags(cmd, target); err != nil {
		return err
	}
	if req, ok := target.(validator.Validatable); ok {
		return validator.ValidateRequest(req)
	}
	return nil
}
