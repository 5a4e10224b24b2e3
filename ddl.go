package qdjango

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/kuzkok/qdjango/schema"
)

// CreateTables creates the tables for every registered model that
// doesn't exist yet, referenced tables first. It's meant for tests and
// small deployments; production schemas usually come from a separate
// migration facility.
func (o *Orm) CreateTables() error {
	models, err := sortedModels(o.registry)
	if err != nil {
		return err
	}
	for _, m := range models {
		stmt, err := o.createTableSQL(m)
		if err != nil {
			return err
		}
		if _, _, err := o.conn.Exec(stmt, nil); err != nil {
			return execError(stmt, err)
		}
	}
	return nil
}

// DropTables drops the tables of every registered model, referencing
// tables first.
func (o *Orm) DropTables() error {
	models, err := sortedModels(o.registry)
	if err != nil {
		return err
	}
	d := o.conn.Dialect()
	for ii := len(models) - 1; ii >= 0; ii-- {
		stmt := "DROP TABLE IF EXISTS " + d.QuoteIdent(models[ii].Table())
		if _, _, err := o.conn.Exec(stmt, nil); err != nil {
			return execError(stmt, err)
		}
	}
	return nil
}

func (o *Orm) createTableSQL(m *schema.Model) (string, error) {
	d := o.conn.Dialect()
	var buf bytes.Buffer
	buf.WriteString("CREATE TABLE IF NOT EXISTS ")
	buf.WriteString(d.QuoteIdent(m.Table()))
	buf.WriteString(" (")
	for ii, f := range m.Fields() {
		if ii > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(d.QuoteIdent(f.Column))
		buf.WriteByte(' ')
		if f.PrimaryKey {
			buf.WriteString(d.PrimaryKeyColumn(f.Kind, f.AutoIncrement))
			continue
		}
		typ := d.ColumnType(f.Kind)
		if typ == "" {
			return "", fmt.Errorf("dialect %s can't map field %s.%s of kind %s", d.Name(), m.Name(), f.Name, f.Kind)
		}
		buf.WriteString(typ)
		if !f.Nullable {
			buf.WriteString(" NOT NULL")
		}
		if f.Default != "" && defaultFunc(f.Default) == nil {
			buf.WriteString(" DEFAULT ")
			if f.Kind == schema.String {
				buf.WriteString("'" + strings.ReplaceAll(f.Default, "'", "''") + "'")
			} else {
				buf.WriteString(f.Default)
			}
		}
	}
	for _, rel := range m.Relations() {
		fk, err := m.Field(rel.Field)
		if err != nil {
			return "", err
		}
		target, err := o.registry.Model(rel.Target)
		if err != nil {
			return "", err
		}
		tf, err := target.Field(rel.TargetField)
		if err != nil {
			return "", err
		}
		buf.WriteString(", FOREIGN KEY (")
		buf.WriteString(d.QuoteIdent(fk.Column))
		buf.WriteString(") REFERENCES ")
		buf.WriteString(d.QuoteIdent(target.Table()))
		buf.WriteByte('(')
		buf.WriteString(d.QuoteIdent(tf.Column))
		buf.WriteByte(')')
	}
	buf.WriteByte(')')
	return buf.String(), nil
}

// sortedModels orders the registered models so referenced models come
// before the models referencing them, breaking ties by name for
// deterministic DDL.
func sortedModels(r *schema.Registry) ([]*schema.Model, error) {
	models := r.Models()
	sort.Slice(models, func(i, j int) bool {
		return models[i].Name() < models[j].Name()
	})
	var ordered []*schema.Model
	state := map[string]int{} // 0 unseen, 1 visiting, 2 done
	var visit func(m *schema.Model) error
	visit = func(m *schema.Model) error {
		switch state[m.Name()] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("circular reference involving model %q", m.Name())
		}
		state[m.Name()] = 1
		for _, rel := range m.Relations() {
			target, err := r.Model(rel.Target)
			if err != nil {
				return err
			}
			if target != m {
				if err := visit(target); err != nil {
					return err
				}
			}
		}
		state[m.Name()] = 2
		ordered = append(ordered, m)
		return nil
	}
	for _, m := range models {
		if err := visit(m); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
