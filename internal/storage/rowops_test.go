package storage

import (
	"errors"
	"testing"

	"minirdb/internal/sql"
)

var schema = []sql.Column{
	{Name: "id", Type: sql.TypeInt},
	{Name: "name", Type: sql.TypeText},
}

func TestBuildRow(t *testing.T) {
	row, err := BuildRow("users", schema, []string{"name", "id"}, []sql.Value{sql.IntValue(5), sql.TextValue("7")})
	if err != nil {
		t.Fatalf("BuildRow failed: %v", err)
	}
	// name gets the decimal text of 5; id gets 7 parsed from text.
	if !row[0].Equal(sql.IntValue(7)) || !row[1].Equal(sql.TextValue("5")) {
		t.Fatalf("unexpected row: %+v", row)
	}

	tests := []struct {
		name    string
		columns []string
		values  []sql.Value
		want    error
	}{
		{"type mismatch", []string{"id", "name"}, []sql.Value{sql.TextValue("x"), sql.TextValue("y")}, ErrTypeMismatch},
		{"unknown column", []string{"id", "age"}, []sql.Value{sql.IntValue(1), sql.IntValue(2)}, ErrUnknownColumn},
		{"missing column", []string{"id"}, []sql.Value{sql.IntValue(1)}, ErrSchema},
		{"duplicate column", []string{"id", "id"}, []sql.Value{sql.IntValue(1), sql.IntValue(2)}, ErrSchema},
		{"count mismatch", []string{"id", "name"}, []sql.Value{sql.IntValue(1)}, ErrSchema},
		{"schema order short", nil, []sql.Value{sql.IntValue(1)}, ErrSchema},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildRow("users", schema, tc.columns, tc.values)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestProjectionAndMatcher(t *testing.T) {
	idx, names, err := Projection("users", schema, []string{"name", "id"})
	if err != nil {
		t.Fatalf("Projection failed: %v", err)
	}
	if len(idx) != 2 || idx[0] != 1 || idx[1] != 0 || names[0] != "name" || names[1] != "id" {
		t.Fatalf("unexpected projection %v %v", idx, names)
	}

	if _, _, err := Projection("users", schema, []string{"id", "id"}); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected ErrSchema for repeated column, got %v", err)
	}

	if _, _, err := Projection("users", schema, []string{"age"}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}

	row := sql.Row{sql.IntValue(2), sql.TextValue("Bob")}

	match, err := Matcher("users", schema, &sql.WhereExpr{Column: "id", Value: sql.IntValue(2)})
	if err != nil || !match(row) {
		t.Fatalf("expected id = 2 to match (err=%v)", err)
	}
	match, err = Matcher("users", schema, &sql.WhereExpr{Column: "name", Value: sql.TextValue("bob")})
	if err != nil || match(row) {
		t.Fatalf("expected case-sensitive text comparison (err=%v)", err)
	}
	if _, err := Matcher("users", schema, &sql.WhereExpr{Column: "age", Value: sql.IntValue(1)}); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}

	got := Project(row, []int{1, 1, 0})
	if len(got) != 3 || got[0].S != "Bob" || got[2].I64 != 2 {
		t.Fatalf("unexpected projected row %v", got)
	}
}

func TestValidateTableName(t *testing.T) {
	for _, ok := range []string{"users", "_t", "T2"} {
		if err := ValidateTableName(ok); err != nil {
			t.Fatalf("expected %q to be valid, got %v", ok, err)
		}
	}
	for _, bad := range []string{"", "2t", "a-b", "../x", "a/b"} {
		if err := ValidateTableName(bad); !errors.Is(err, ErrSchema) {
			t.Fatalf("expected %q to be rejected, got %v", bad, err)
		}
	}
}
