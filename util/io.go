package util

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"reflect"
	"strconv"
)

//*******************************************
// json io
//*******************************************

func WriteJSONToFile[T any](value T, file string) {
	data, _ := json.Marshal(value)

	outfile, _ := os.Create(file)
	defer outfile.Close()
	outfile.Write(data)
}

func ReadJSONFromFile[T any](file string) T {
	_, err := os.Stat(file)
	if errors.Is(err, os.ErrNotExist) {
		panic("file not found: " + file)
	}

	data, _ := os.ReadFile(file)

	var value T
	json.Unmarshal(data, &value)

	return value
}

//*******************************************
// csv io
//*******************************************

// Iterates the rows of a csv file mapped onto T by "csv" field tags.
//
// Unparsable cells keep the zero value, short rows are skipped.
func ReadCSVFromFile[T any](filename string, delimiter rune) func(yield func(T) bool) {
	return func(yield func(T) bool) {
		file, err := os.Open(filename)
		if err != nil {
			panic(err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.Comma = delimiter
		header, err := reader.Read()
		if err != nil {
			panic(err)
		}
		name_row_mapping := NewDict[string, int](10)
		for i, name := range header {
			name_row_mapping[name] = i
		}

		var val T
		typ := reflect.TypeOf(val)
		num_field := typ.NumField()
		fields := NewList[Triple[int, int, reflect.Kind]](num_field)
		for i := 0; i < num_field; i++ {
			field := typ.Field(i)
			tag := field.Tag.Get("csv")
			if tag == "" {
				continue
			}
			if !name_row_mapping.ContainsKey(tag) {
				continue
			}
			row := name_row_mapping[tag]
			switch field.Type.Kind() {
			case reflect.Bool:
				fields.Add(MakeTriple(i, row, reflect.Bool))
			case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
				fields.Add(MakeTriple(i, row, reflect.Int))
			case reflect.Float32, reflect.Float64:
				fields.Add(MakeTriple(i, row, reflect.Float64))
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				fields.Add(MakeTriple(i, row, reflect.Uint))
			case reflect.String:
				fields.Add(MakeTriple(i, row, reflect.String))
			}
		}
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			} else if err != nil {
				continue
			}
			t := reflect.New(typ).Elem()
			for _, field := range fields {
				index := field.A
				row := field.B
				kind := field.C
				if row >= len(record) {
					continue
				}
				value := record[row]
				if value == "" {
					continue
				}
				f := t.Field(index)
				switch kind {
				case reflect.Bool:
					num, _ := strconv.ParseBool(value)
					f.SetBool(num)
				case reflect.Int:
					num, _ := strconv.ParseInt(value, 10, 64)
					f.SetInt(num)
				case reflect.Uint:
					num, _ := strconv.ParseUint(value, 10, 64)
					f.SetUint(num)
				case reflect.Float64:
					num, _ := strconv.ParseFloat(value, 64)
					f.SetFloat(num)
				case reflect.String:
					f.SetString(value)
				}
			}
			value := t.Interface().(T)
			if !yield(value) {
				break
			}
		}
	}
}
