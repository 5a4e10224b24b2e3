// Package qdjango is a small object relational mapper built around three
// pieces: a schema registry mapping explicitly declared models to tables,
// a composable where-clause expression tree compiled to parameterized SQL,
// and an immutable, lazily executed queryset builder.
//
// Models are declared once at startup:
//
//	type User struct {
//		ID   int64
//		Name string
//		Age  int64
//	}
//
//	o, _ := qdjango.Open("sqlite", ":memory:")
//	user := o.MustRegister(schema.Definition{
//		Type: (*User)(nil),
//		Fields: []schema.Field{
//			{Name: "ID", Kind: schema.Int, PrimaryKey: true, AutoIncrement: true},
//			{Name: "Name", Kind: schema.String},
//			{Name: "Age", Kind: schema.Int},
//		},
//	})
//
// Querysets are immutable values; builder calls derive new ones and
// nothing executes until a terminal operation:
//
//	var adults []User
//	err := o.Queryset(user).
//		Filter(qdjango.Gte("Age", int64(18))).
//		OrderBy("Name", qdjango.ASC).
//		All(&adults)
//
// Literal values always travel as statement parameters; the compiler
// never interpolates them into SQL text.
//
// One dialect subpackage must be imported for its registration side
// effect:
//
//	import _ "github.com/kuzkok/qdjango/dialect/sqlite"
package qdjango
