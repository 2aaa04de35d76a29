// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package resultrow

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Values is a record held in memory.
type Values []any

// ValueAt returns the value at the zero based position index.
func (v Values) ValueAt(index int) (any, error) {
	if index < 0 || index >= len(v) {
		return nil, errors.Errorf("position %d out of range, record has %d values", index, len(v))
	}
	return v[index], nil
}

// ScanRow reads the current row of rows without any conversion.
func ScanRow(rows *sql.Rows) (Values, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	// Scanning into *any copies the driver value as is, including
	// byte slices.
	vals := make(Values, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, errors.Wrap(err, "cannot scan row")
	}
	return vals, nil
}

// ScanSQLXRow reads the current row of rows without any conversion.
func ScanSQLXRow(rows *sqlx.Rows) (Values, error) {
	vals, err := rows.SliceScan()
	if err != nil {
		return nil, errors.Wrap(err, "cannot scan row")
	}
	return Values(vals), nil
}

// Iterator builds a [ResultRow] for each row of a query result. The query is
// run by the caller, within whatever transaction applies.
//
// All the rows of an iterator share its field index and the dialect resolved
// when the iterator was created.
type Iterator struct {
	rows    *sql.Rows
	scan    func() (Values, error)
	index   *FieldIndex
	opts    options
	row     *ResultRow
	err     error
	started bool
}

// NewIterator returns an iterator over rows. [Iterator.Close] must be called
// once iteration is finished.
func NewIterator(ctx context.Context, rows *sql.Rows, index *FieldIndex, opts ...Option) *Iterator {
	iter := &Iterator{rows: rows, index: index, opts: resolveOptions(ctx, opts)}
	iter.scan = func() (Values, error) { return ScanRow(rows) }
	return iter
}

// NewSQLXIterator returns an iterator over rows obtained through sqlx.
func NewSQLXIterator(ctx context.Context, rows *sqlx.Rows, index *FieldIndex, opts ...Option) *Iterator {
	iter := &Iterator{rows: rows.Rows, index: index, opts: resolveOptions(ctx, opts)}
	iter.scan = func() (Values, error) { return ScanSQLXRow(rows) }
	return iter
}

// Next prepares the next row for [Iterator.Row]. It returns false when there
// are no more rows or an error occurred. The error is returned by
// [Iterator.Close].
func (iter *Iterator) Next() bool {
	iter.row = nil
	if iter.err != nil || iter.rows == nil {
		return false
	}
	if !iter.started {
		iter.started = true
		if err := iter.checkColumns(); err != nil {
			iter.err = err
			return false
		}
	}
	if !iter.rows.Next() {
		return false
	}
	vals, err := iter.scan()
	if err == nil {
		iter.row, err = create(vals, iter.index, iter.opts)
	}
	if err != nil {
		iter.err = fmt.Errorf("cannot get result: %w", err)
		return false
	}
	return true
}

func (iter *Iterator) checkColumns() error {
	cols, err := iter.rows.Columns()
	if err != nil {
		return err
	}
	if len(cols) < iter.index.Len() {
		return ErrInvalidFieldIndex.New(fmt.Sprintf("%d positions indexed but query returns %d columns", iter.index.Len(), len(cols)))
	}
	return nil
}

// Row returns the row prepared by the previous call to [Iterator.Next].
func (iter *Iterator) Row() *ResultRow {
	return iter.row
}

// Err returns the error that stopped the iteration, if any. Unlike
// [Iterator.Close] it does not release the rows.
func (iter *Iterator) Err() error {
	return iter.err
}

// Close finishes the iteration and returns any errors encountered. Close can
// be called multiple times on the [Iterator] and the same error will be
// returned.
func (iter *Iterator) Close() error {
	iter.started = true
	iter.row = nil
	if iter.rows == nil {
		return iter.err
	}
	err := iter.rows.Err()
	if cerr := iter.rows.Close(); err == nil {
		err = cerr
	}
	iter.rows = nil
	if iter.err == nil {
		iter.err = err
	}
	return iter.err
}

// All reads every row of rows and closes it.
func All(ctx context.Context, rows *sql.Rows, index *FieldIndex, opts ...Option) ([]*ResultRow, error) {
	iter := NewIterator(ctx, rows, index, opts...)
	var result []*ResultRow
	for iter.Next() {
		result = append(result, iter.Row())
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return result, nil
}
