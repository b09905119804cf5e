package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type linkStatus struct {
	Ticks   uint64 `json:"ticks"`
	Skipped uint64 `json:"skipped"`
}

type roleStatus struct {
	linkStatus
	Endpoint string        `json:"endpoint"`
	Latency  time.Duration `json:"latency" table:"wide"`
	Secret   string        `json:"secret" table:"-"`
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestTable_Render(t *testing.T) {
	tbl := &Table{}
	tbl.SetHeaders("ID", "NAME")
	tbl.AddRow("1", "root")
	tbl.AddRow("42", "cube")

	var buf bytes.Buffer
	if err := tbl.Render(&buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := lines(buf.String())
	want := []string{"ID  NAME", "1   root", "42  cube"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestTable_NoHeaders(t *testing.T) {
	tbl := &Table{Headers: []string{"A"}, Rows: [][]string{{"x"}}}

	var buf bytes.Buffer
	if err := tbl.RenderWithOptions(&buf, true); err != nil {
		t.Fatalf("RenderWithOptions() error = %v", err)
	}
	if got := buf.String(); got != "x\n" {
		t.Errorf("output = %q, want %q", got, "x\n")
	}
}

func TestTableFormatter_Struct(t *testing.T) {
	status := roleStatus{
		linkStatus: linkStatus{Ticks: 10, Skipped: 2},
		Endpoint:   "tcp://127.0.0.1:5556",
		Latency:    3 * time.Millisecond,
		Secret:     "hunter2",
	}

	tests := []struct {
		name string
		wide bool
		want []string
	}{
		{
			name: "narrow",
			want: []string{
				"FIELD     VALUE",
				"ticks     10",
				"skipped   2",
				"endpoint  tcp://127.0.0.1:5556",
			},
		},
		{
			name: "wide",
			wide: true,
			want: []string{
				"FIELD     VALUE",
				"ticks     10",
				"skipped   2",
				"endpoint  tcp://127.0.0.1:5556",
				"latency   3ms",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &TableFormatter{Wide: tt.wide}
			if err := f.Format(&buf, &status); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			got := lines(buf.String())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
			if strings.Contains(buf.String(), "hunter2") {
				t.Error("table:\"-\" field was rendered")
			}
		})
	}
}

func TestTableFormatter_Slice(t *testing.T) {
	type node struct {
		ID       int32  `json:"id"`
		Name     string `json:"name"`
		ParentID int32
	}
	data := []node{{ID: 1, Name: "root"}, {ID: 2, Name: "", ParentID: 1}}

	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	got := lines(buf.String())
	want := []string{
		"ID  NAME  PARENT_ID",
		"1   root  0",
		"2   -     1",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTableFormatter_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, []linkStatus{}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}

func TestTableFormatter_Map(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, map[string]int{"peers": 3}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	got := lines(buf.String())
	want := []string{"KEY    VALUE", "peers  3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTableFormatter_ScalarFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, 7); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "7" {
		t.Errorf("output = %q, want 7", got)
	}
}

func TestTableFormatter_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("output = %q, want empty", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	str := "ptr"
	var nilPtr *string
	tests := []struct {
		name  string
		input reflect.Value
		want  string
	}{
		{"string", reflect.ValueOf("hello"), "hello"},
		{"empty string", reflect.ValueOf(""), "-"},
		{"int32", reflect.ValueOf(int32(-1)), "-1"},
		{"uint64", reflect.ValueOf(uint64(99)), "99"},
		{"float32", reflect.ValueOf(float32(0.5)), "0.50"},
		{"bool", reflect.ValueOf(true), "true"},
		{"duration", reflect.ValueOf(20 * time.Millisecond), "20ms"},
		{"zero time", reflect.ValueOf(time.Time{}), "-"},
		{"time", reflect.ValueOf(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)), "2026-03-01 09:30:00"},
		{"slice", reflect.ValueOf([]int{1, 2}), "[2 items]"},
		{"empty map", reflect.ValueOf(map[string]int{}), "-"},
		{"pointer", reflect.ValueOf(&str), "ptr"},
		{"nil pointer", reflect.ValueOf(nilPtr), ""},
		{"invalid", reflect.Value{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.input); got != tt.want {
				t.Errorf("formatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ParentID":   "Parent_ID",
		"HTTPServer": "HTTP_Server",
		"peers":      "peers",
		"Name":       "Name",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
