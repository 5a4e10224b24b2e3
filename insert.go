package qdjango

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/kuzkok/qdjango/schema"
)

// Insert saves a new object, which must be a pointer to the struct type
// of a registered model. Zero-valued fields with a function default take
// the function's value (written back to the object); a zero auto
// increment primary key is assigned by the database and backfilled.
func (o *Orm) Insert(m *schema.Model, obj interface{}) error {
	o.freeze()
	val, err := outValue(m, obj)
	if err != nil {
		return err
	}
	d := o.conn.Dialect()
	var columns []string
	var params []interface{}
	var autoPK *schema.Field
	for _, f := range m.Fields() {
		fv := val.FieldByIndex(m.Index(f))
		if f.AutoIncrement && fv.IsZero() {
			autoPK = f
			continue
		}
		if fv.IsZero() && f.Default != "" {
			if fn := defaultFunc(f.Default); fn != nil {
				dv := fn()
				if err := m.CheckValue(f, dv); err != nil {
					return err
				}
				fv.Set(reflect.ValueOf(dv).Convert(fv.Type()))
			} else {
				// Literal default, let the database fill it in.
				continue
			}
		}
		columns = append(columns, f.Column)
		params = append(params, fv.Interface())
	}
	var buf bytes.Buffer
	buf.WriteString("INSERT INTO ")
	buf.WriteString(d.QuoteIdent(m.Table()))
	if len(columns) == 0 {
		buf.WriteByte(' ')
		buf.WriteString(d.DefaultValues())
	} else {
		buf.WriteString(" (")
		for ii, col := range columns {
			if ii > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(d.QuoteIdent(col))
		}
		buf.WriteString(") VALUES (")
		for ii := range columns {
			if ii > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(d.Placeholder(ii + 1))
		}
		buf.WriteByte(')')
	}
	if autoPK != nil && d.InsertReturning() {
		buf.WriteString(" RETURNING ")
		buf.WriteString(d.QuoteIdent(autoPK.Column))
		var id int64
		if err := o.conn.QueryRow(buf.String(), params).Scan(&id); err != nil {
			return execError(buf.String(), err)
		}
		val.FieldByIndex(m.Index(autoPK)).SetInt(id)
		return nil
	}
	_, lastID, err := o.conn.Exec(buf.String(), params)
	if err != nil {
		return execError(buf.String(), err)
	}
	if autoPK != nil {
		val.FieldByIndex(m.Index(autoPK)).SetInt(lastID)
	}
	return nil
}

// Save inserts obj when its primary key is zero, and otherwise updates
// the row with that key. Models without a primary key can only Insert.
func (o *Orm) Save(m *schema.Model, obj interface{}) error {
	pk := m.PrimaryKey()
	if pk == nil {
		return &UnsupportedOperationError{Op: "save", Reason: fmt.Sprintf("model %q has no primary key", m.Name())}
	}
	val, err := outValue(m, obj)
	if err != nil {
		return err
	}
	pkVal := val.FieldByIndex(m.Index(pk))
	if pkVal.IsZero() {
		return o.Insert(m, obj)
	}
	values := Values{}
	for _, f := range m.Fields() {
		if f == pk {
			continue
		}
		values[f.Name] = val.FieldByIndex(m.Index(f)).Interface()
	}
	affected, err := o.Queryset(m).Filter(Eq(pk.Name, pkVal.Interface())).Update(values)
	if err != nil {
		return err
	}
	if affected == 0 {
		// The key was assigned by the caller but the row is gone.
		return o.Insert(m, obj)
	}
	return nil
}
