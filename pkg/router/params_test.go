package router

import (
	"reflect"
	"testing"
)

func testParams() Params {
	return Params{
		{Name: "id", Kind: KindDynamic, Value: "42"},
		{Name: "path", Kind: KindCatchAll, Values: []string{"a", "b", "c"}},
		{Name: "rest", Kind: KindOptionalCatchAll, Values: []string{}},
	}
}

func TestParamsGet(t *testing.T) {
	p := testParams()

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"id", "42", true},
		{"path", "a/b/c", true},
		{"rest", "", true},
		{"missing", "", false},
	}

	for _, tt := range tests {
		got, ok := p.Get(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParamsValues(t *testing.T) {
	p := testParams()

	if got, _ := p.Values("id"); !reflect.DeepEqual(got, []string{"42"}) {
		t.Errorf("Values(id) = %v", got)
	}
	if got, _ := p.Values("path"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Values(path) = %v", got)
	}
	if got, ok := p.Values("rest"); !ok || got == nil || len(got) != 0 {
		t.Errorf("Values(rest) = %#v, %v; want empty non-nil", got, ok)
	}
	if _, ok := p.Values("missing"); ok {
		t.Error("Values(missing) should report false")
	}
}

func TestParamsMap(t *testing.T) {
	want := map[string]any{
		"id":   "42",
		"path": []string{"a", "b", "c"},
		"rest": []string{},
	}
	if got := testParams().Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("Map() = %#v, want %#v", got, want)
	}
}

func TestParamsStrings(t *testing.T) {
	want := map[string]string{"id": "42", "path": "a/b/c", "rest": ""}
	if got := testParams().Strings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
}

func TestBindCopiesComponents(t *testing.T) {
	route := testRoute("r", "/[id]/[...rest]")
	components := []string{"x", "y", "z"}

	params := bind(route, components, []span{{0, 1}, {1, 3}}, EmptyCatchAllBind)
	components[1] = "mutated"

	if got, _ := params.Values("rest"); !reflect.DeepEqual(got, []string{"y", "z"}) {
		t.Errorf("rest = %v, bindings should not alias the input", got)
	}
}

func TestBindEmptyOptional(t *testing.T) {
	route := testRoute("r", "/docs/[[...slug]]")
	components := []string{"docs"}
	caps := []span{{1, 1}}

	bound := bind(route, components, caps, EmptyCatchAllBind)
	if bound.Len() != 1 {
		t.Fatalf("bind mode: Len() = %d, want 1", bound.Len())
	}
	if bound[0].Values == nil {
		t.Error("bind mode should produce a non-nil empty slice")
	}

	omitted := bind(route, components, caps, EmptyCatchAllOmit)
	if omitted.Len() != 0 {
		t.Errorf("omit mode: Len() = %d, want 0", omitted.Len())
	}
}

func TestParamParserScalars(t *testing.T) {
	type target struct {
		Name   string  `param:"name"`
		ID     int     `param:"id"`
		Big    int64   `param:"big"`
		Count  uint    `param:"count"`
		Price  float64 `param:"price"`
		Active bool    `param:"active"`
		Skip   string
	}

	params := Params{
		{Name: "name", Kind: KindDynamic, Value: "test"},
		{Name: "id", Kind: KindDynamic, Value: "123"},
		{Name: "big", Kind: KindDynamic, Value: "9223372036854775807"},
		{Name: "count", Kind: KindDynamic, Value: "7"},
		{Name: "price", Kind: KindDynamic, Value: "19.99"},
		{Name: "active", Kind: KindDynamic, Value: "true"},
	}

	var got target
	if err := NewParamParser().Parse(params, &got); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := target{Name: "test", ID: 123, Big: 9223372036854775807, Count: 7, Price: 19.99, Active: true}
	if got != want {
		t.Errorf("Parse() = %+v, want %+v", got, want)
	}
}

func TestParamParserSlice(t *testing.T) {
	type target struct {
		Path []string `param:"path"`
		ID   []string `param:"id"`
		Full string   `param:"path"`
	}

	var got target
	if err := NewParamParser().Parse(testParams(), &got); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if !reflect.DeepEqual(got.Path, []string{"a", "b", "c"}) {
		t.Errorf("Path = %v", got.Path)
	}
	if !reflect.DeepEqual(got.ID, []string{"42"}) {
		t.Errorf("ID = %v", got.ID)
	}
	if got.Full != "a/b/c" {
		t.Errorf("Full = %q", got.Full)
	}
}

func TestParamParserMissingParam(t *testing.T) {
	type target struct {
		ID   int    `param:"id"`
		Name string `param:"name"`
	}

	got := target{Name: "default"}
	if err := NewParamParser().Parse(Params{{Name: "id", Kind: KindDynamic, Value: "5"}}, &got); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if got.ID != 5 || got.Name != "default" {
		t.Errorf("Parse() = %+v", got)
	}
}

func TestParamParserErrors(t *testing.T) {
	type badInt struct {
		ID int `param:"id"`
	}
	type badSlice struct {
		IDs []int `param:"id"`
	}
	params := Params{{Name: "id", Kind: KindDynamic, Value: "abc"}}

	tests := []struct {
		name   string
		target any
	}{
		{"invalid int", &badInt{}},
		{"unsupported slice", &badSlice{}},
		{"not a pointer", badInt{}},
		{"pointer to non-struct", new(string)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewParamParser().Parse(params, tt.target); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParamParserNil(t *testing.T) {
	if err := NewParamParser().Parse(testParams(), nil); err != nil {
		t.Errorf("Parse(nil) error: %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"550e8400-e29b-41d4-a716-446655440000", false},
		{"550E8400-E29B-41D4-A716-446655440000", false},
		{"not-a-uuid", true},
		{"550e8400e29b41d4a716446655440000", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateUUID(tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUUID(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
		}
	}
}

func TestValidateParam(t *testing.T) {
	tests := []struct {
		value     string
		paramType string
		wantErr   bool
	}{
		{"123", "int", false},
		{"-5", "int64", false},
		{"abc", "int", true},
		{"7", "uint", false},
		{"-7", "uint", true},
		{"550e8400-e29b-41d4-a716-446655440000", "uuid", false},
		{"bad", "uuid", true},
		{"anything", "string", false},
		{"anything", "", false},
	}

	for _, tt := range tests {
		err := ValidateParam(tt.value, tt.paramType)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateParam(%q, %q) error = %v, wantErr %v", tt.value, tt.paramType, err, tt.wantErr)
		}
	}
}
