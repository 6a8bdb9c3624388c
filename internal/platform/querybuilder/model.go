package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds an INSERT from the db-tagged exported fields of model.
// Fields tagged `db:"id"` with a zero value are left to the database.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := columnsAndValuesFromModel(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// Columns lists the db-tagged columns of model, optionally qualified with an
// alias, for use as a SELECT list.
func Columns(model any, alias string) []string {
	value, err := structValue(model)
	if err != nil {
		return nil
	}
	typ := value.Type()
	out := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		col, ok := columnName(typ.Field(i))
		if !ok {
			continue
		}
		if alias != "" {
			col = alias + "." + col
		}
		out = append(out, col)
	}
	return out
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value, err := structValue(model)
	if err != nil {
		return nil, nil, err
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		col, ok := columnName(typ.Field(i))
		if !ok {
			continue
		}
		fieldValue := value.Field(i)
		if col == "id" && fieldValue.IsZero() {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, fieldValue.Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct")
	}
	return value, nil
}

func columnName(field reflect.StructField) (string, bool) {
	if field.PkgPath != "" {
		return "", false
	}
	tag := strings.TrimSpace(field.Tag.Get("db"))
	col := strings.TrimSpace(strings.Split(tag, ",")[0])
	if col == "" || col == "-" {
		return "", false
	}
	return col, true
}
