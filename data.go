package ciplot

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// DataFrame is a column oriented table. All columns have length N.
type DataFrame struct {
	Name    string
	N       int
	Columns map[string]Field

	// Pool interns the values of all String columns of this data frame.
	Pool *StringPool
}

// NewDataFrame returns an empty data frame. A nil pool gets replaced by
// a fresh one.
func NewDataFrame(name string, pool *StringPool) *DataFrame {
	if pool == nil {
		pool = NewStringPool()
	}
	return &DataFrame{
		Name:    name,
		Columns: make(map[string]Field),
		Pool:    pool,
	}
}

// NewDataFrameFrom constructs a data frame from data which must be a slice
// of structs ("slice of measurements"). Exported fields and exported methods
// without arguments become columns if their type is an integer, a float or
// a string. Everything else is ignored.
func NewDataFrameFrom(data interface{}) (*DataFrame, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("cannot convert %T to data frame", data)
	}
	t := v.Type().Elem()
	n := v.Len()
	df := NewDataFrame(t.Name(), nil)
	df.N = n

	// Fields first.
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue // unexported
		}
		idx := i
		column, ok := reflectColumn(f.Type, n, df.Pool, func(j int) reflect.Value {
			return v.Index(j).Field(idx)
		})
		if ok {
			df.Columns[f.Name] = column
		}
	}

	// The same for methods like "func(elemtype) [int,string,float]".
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		mt := m.Type
		if mt.NumIn() != 1 || mt.NumOut() != 1 {
			continue
		}
		if _, dup := df.Columns[m.Name]; dup {
			continue
		}
		column, ok := reflectColumn(mt.Out(0), n, df.Pool, func(j int) reflect.Value {
			return m.Func.Call([]reflect.Value{v.Index(j)})[0]
		})
		if ok {
			df.Columns[m.Name] = column
		}
	}

	return df, nil
}

func reflectColumn(t reflect.Type, n int, pool *StringPool, value func(int) reflect.Value) (Field, bool) {
	var field Field
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		field = NewField(n, Int, pool)
		for i := 0; i < n; i++ {
			field.Data[i] = float64(value(i).Int())
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		field = NewField(n, Int, pool)
		for i := 0; i < n; i++ {
			field.Data[i] = float64(value(i).Uint())
		}
	case reflect.Float32, reflect.Float64:
		field = NewField(n, Float, pool)
		for i := 0; i < n; i++ {
			field.Data[i] = value(i).Float()
		}
	case reflect.String:
		field = NewField(n, String, pool)
		for i := 0; i < n; i++ {
			field.Data[i] = float64(pool.Add(value(i).String()))
		}
	default:
		return Field{}, false
	}
	return field, true
}

// Copy returns a deep copy of df. The string pool is shared.
func (df *DataFrame) Copy() *DataFrame {
	c := NewDataFrame(df.Name, df.Pool)
	c.N = df.N
	for name, field := range df.Columns {
		c.Columns[name] = field.Copy()
	}
	return c
}

// Has reports whether df contains a column called name.
func (df *DataFrame) Has(name string) bool {
	_, ok := df.Columns[name]
	return ok
}

// FieldNames returns the sorted names of all columns.
func (df *DataFrame) FieldNames() []string {
	names := make([]string, 0, len(df.Columns))
	for name := range df.Columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rename the column old to new. A column already called new is replaced.
func (df *DataFrame) Rename(old, new string) {
	if old == new {
		return
	}
	field, ok := df.Columns[old]
	if !ok {
		return
	}
	delete(df.Columns, old)
	df.Columns[new] = field
}

func (df *DataFrame) Delete(name string) {
	delete(df.Columns, name)
}

// Append the rows of other to df. Both must have the same columns.
func (df *DataFrame) Append(other *DataFrame) error {
	if !same(df.FieldNames(), other.FieldNames()) {
		return fmt.Errorf("cannot append %v to %v", other.FieldNames(), df.FieldNames())
	}
	for name, field := range df.Columns {
		o := other.Columns[name]
		if o.Type == String && other.Pool != df.Pool {
			for _, x := range o.Data {
				field.Data = append(field.Data, float64(df.Pool.Add(o.String(x))))
			}
		} else {
			field.Data = append(field.Data, o.Data...)
		}
		df.Columns[name] = field
	}
	df.N += other.N
	return nil
}

// Print dumps df as a table to w.
func (df *DataFrame) Print(w io.Writer) error {
	names := df.FieldNames()
	tw := tabwriter.NewWriter(w, 4, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(names, "\t"))
	for i := 0; i < df.N; i++ {
		row := make([]string, len(names))
		for j, name := range names {
			field := df.Columns[name]
			row[j] = field.String(field.Data[i])
		}
		fmt.Fprintf(tw, "%d\t%s\t\n", i+1, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Levels returns the distinct values of field in df.
func Levels(df *DataFrame, field string) FloatSet {
	if f, ok := df.Columns[field]; ok {
		return f.Levels()
	}
	return NewFloatSet()
}

// Filter extracts all rows from df where field==value. An empty field
// returns a copy of df.
func Filter(df *DataFrame, field string, value float64) *DataFrame {
	if field == "" {
		return df.Copy()
	}
	f, ok := df.Columns[field]
	if !ok {
		return df.Copy()
	}
	var rows []int
	for i, x := range f.Data {
		if x == value {
			rows = append(rows, i)
		}
	}
	return df.selectRows(rows)
}

// Partition splits df into one data frame per level of field.
func Partition(df *DataFrame, field string, levels []float64) []*DataFrame {
	parts := make([]*DataFrame, len(levels))
	for i, level := range levels {
		parts[i] = Filter(df, field, level)
	}
	return parts
}

func (df *DataFrame) selectRows(rows []int) *DataFrame {
	result := NewDataFrame(df.Name, df.Pool)
	result.N = len(rows)
	for name, field := range df.Columns {
		nf := NewField(len(rows), field.Type, df.Pool)
		for j, i := range rows {
			nf.Data[j] = field.Data[i]
		}
		result.Columns[name] = nf
	}
	return result
}

// -------------------------------------------------------------------------
// Field

// FieldType represents the basic type of a field.
type FieldType uint

const (
	Int FieldType = iota
	Float
	String
)

func (t FieldType) String() string {
	switch t {
	case Int:
		return "Int"
	case Float:
		return "Float"
	case String:
		return "String"
	}
	return fmt.Sprintf("FieldType(%d)", uint(t))
}

// Field is one column of a data frame. String values are stored as their
// index in Pool.
type Field struct {
	Type FieldType
	Data []float64
	Pool *StringPool
}

// NewField returns a zero valued field of length n.
func NewField(n int, t FieldType, pool *StringPool) Field {
	return Field{
		Type: t,
		Data: make([]float64, n),
		Pool: pool,
	}
}

// Discrete fields are Int or String fields.
func (f Field) Discrete() bool {
	return f.Type == Int || f.Type == String
}

// MinMax returns the minimum and maximum of the non-NaN values in f and
// their indices. Both indices are -1 if f has no such values.
func (f Field) MinMax() (min, max float64, mini, maxi int) {
	min, max = math.Inf(1), math.Inf(-1)
	mini, maxi = -1, -1
	for i, x := range f.Data {
		if math.IsNaN(x) {
			continue
		}
		if x < min {
			min, mini = x, i
		}
		if x > max {
			max, maxi = x, i
		}
	}
	return min, max, mini, maxi
}

// Levels returns the distinct values of f.
func (f Field) Levels() FloatSet {
	levels := NewFloatSet()
	for _, x := range f.Data {
		levels.Add(x)
	}
	return levels
}

// String formats the value x stored in f.
func (f Field) String(x float64) string {
	switch f.Type {
	case String:
		if f.Pool == nil {
			return "--NA--"
		}
		return f.Pool.Get(int(x))
	case Int:
		return fmt.Sprintf("%d", int64(x))
	}
	return fmt.Sprintf("%g", x)
}

// Const returns a field of the same type as f with n copies of x.
func (f Field) Const(x float64, n int) Field {
	c := NewField(n, f.Type, f.Pool)
	for i := range c.Data {
		c.Data[i] = x
	}
	return c
}

func (f Field) Copy() Field {
	c := NewField(len(f.Data), f.Type, f.Pool)
	copy(c.Data, f.Data)
	return c
}

// Apply replaces every value x in f by fn(x).
func (f Field) Apply(fn func(float64) float64) {
	for i, x := range f.Data {
		f.Data[i] = fn(x)
	}
}
