package common

import (
	"database/sql"
	"fmt"
	"reflect"

	g "github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
)

var (
	dialect = g.Dialect("mysql")
)

type Conn struct {
	Db *sqlx.DB
	Tx *sqlx.Tx
}

// EnumFields 枚举结构体的 db 标签字段，用于构造查询列
func EnumFields(obj interface{}) []interface{} {

	rt := reflect.TypeOf(obj)
	if rt.Kind() != reflect.Struct {
		return nil
	}

	var fields []interface{}
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if field := f.Tag.Get("db"); field != "" && field != "-" {
			fields = append(fields, field)
		}
	}

	return fields
}

func Insert(db Conn, table string, rows ...interface{}) (sql.Result, error) {

	if db.Db == nil && db.Tx == nil {
		return nil, fmt.Errorf("no conn")
	}
	query, _, _ := dialect.Insert(table).Rows(rows...).ToSQL()

	var (
		res sql.Result
		err error
	)

	if db.Tx != nil {
		res, err = db.Tx.Exec(query)
	} else {
		res, err = db.Db.Exec(query)
	}
	if err != nil {
		Printf("insert into %s err: %s\n", table, err.Error())
	}

	return res, err
}

func Update(db Conn, table string, record g.Record, ex ...g.Expression) (sql.Result, error) {

	if db.Db == nil && db.Tx == nil {
		return nil, fmt.Errorf("no conn")
	}
	query, _, _ := dialect.Update(table).Set(record).Where(ex...).ToSQL()

	var (
		res sql.Result
		err error
	)

	if db.Tx != nil {
		res, err = db.Tx.Exec(query)
	} else {
		res, err = db.Db.Exec(query)
	}
	if err != nil {
		Printf("update %s err: %s\n", table, err.Error())
	}

	return res, err
}

func Delete(db Conn, table string, ex ...exp.Expression) (sql.Result, error) {

	if db.Db == nil && db.Tx == nil {
		return nil, fmt.Errorf("no conn")
	}
	query, _, _ := dialect.Delete(table).Where(ex...).ToSQL()

	var (
		res sql.Result
		err error
	)

	if db.Tx != nil {
		res, err = db.Tx.Exec(query)
	} else {
		res, err = db.Db.Exec(query)
	}
	if err != nil {
		Printf("delete from %s err: %s\n", table, err.Error())
	}

	return res, err
}
