package dataset

import (
	"path/filepath"
	"strings"
	"testing"
)

func sampleTable() *Table {
	t := New("id", "client_id", "zip")
	t.AppendRow([]string{"1", "c1", "00123"})
	t.AppendRow([]string{"2", "c2", "90210"})
	t.AppendRow([]string{"3", "c1", "00123"})
	return t
}

func TestReadStripsBOMAndNULL(t *testing.T) {
	in := "\ufeffid,zip,errors\n1,00123,NULL\n2,,Bad PIN\n"
	tab, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if tab.Columns[0] != "id" {
		t.Errorf("BOM not stripped from header: %q", tab.Columns[0])
	}
	if got := tab.Value(0, "errors"); got != "" {
		t.Errorf("NULL not normalized, got %q", got)
	}
	if !IsNA(tab.Value(1, "zip")) {
		t.Error("empty cell should be NA")
	}
}

func TestReadEmptyFile(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err != ErrEmptyFile {
		t.Errorf("want ErrEmptyFile, got %v", err)
	}
}

func TestWriteQuoteAllRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	tab := sampleTable()
	if err := tab.WriteFile(path, WriteOptions{QuoteAll: true}); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if back.Len() != tab.Len() {
		t.Fatalf("row count changed: %d != %d", back.Len(), tab.Len())
	}
	if got := back.Value(0, "zip"); got != "00123" {
		t.Errorf("leading zeros lost: %q", got)
	}
}

func TestQuoteAllQuotesEveryField(t *testing.T) {
	var sb strings.Builder
	tab := New("a", "b")
	tab.AppendRow([]string{"1", `say "hi"`})
	if err := tab.Write(&sb, WriteOptions{QuoteAll: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := "\"a\",\"b\"\n\"1\",\"say \"\"hi\"\"\"\n"
	if sb.String() != want {
		t.Errorf("got %q, want %q", sb.String(), want)
	}
}

func TestSelectAndDrop(t *testing.T) {
	tab := sampleTable()
	sel, err := tab.Select("zip", "id")
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Columns) != 2 || sel.Columns[0] != "zip" {
		t.Errorf("unexpected columns %v", sel.Columns)
	}
	if sel.Value(1, "id") != "2" {
		t.Errorf("row content reordered incorrectly")
	}

	tab.Drop("client_id", "nonexistent")
	if tab.HasCol("client_id") {
		t.Error("client_id not dropped")
	}
	if len(tab.Rows[0]) != len(tab.Columns) {
		t.Error("rows out of sync with columns after Drop")
	}
}

func TestAddColumn(t *testing.T) {
	tab := sampleTable()
	if err := tab.AddColumn("fraud", []string{"0", "1", "0"}); err != nil {
		t.Fatalf("AddColumn failed: %v", err)
	}
	if tab.Value(1, "fraud") != "1" {
		t.Error("column values misaligned")
	}
	if err := tab.AddColumn("fraud", []string{"0", "0", "0"}); err == nil {
		t.Error("duplicate column should fail")
	}
	if err := tab.AddColumn("short", []string{"0"}); err == nil {
		t.Error("length mismatch should fail")
	}
}

func TestValueCounts(t *testing.T) {
	tab := sampleTable()
	counts, err := tab.ValueCounts("zip")
	if err != nil {
		t.Fatalf("ValueCounts failed: %v", err)
	}
	if counts[0].Value != "00123" || counts[0].Count != 2 {
		t.Errorf("unexpected top value %+v", counts[0])
	}
	if _, err := tab.ValueCounts("missing"); err == nil {
		t.Error("missing column should fail")
	}
}

func TestSplitByColumn(t *testing.T) {
	tab := sampleTable()
	keys, parts, err := tab.SplitByColumn("client_id")
	if err != nil {
		t.Fatalf("SplitByColumn failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "c1" {
		t.Errorf("unexpected keys %v", keys)
	}
	if parts["c1"].Len() != 2 || parts["c2"].Len() != 1 {
		t.Error("rows partitioned incorrectly")
	}
}
