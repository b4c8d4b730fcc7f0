package diag

import (
	"sync"
	"testing"
)

func TestBagRespectsLimit(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 3; i++ {
		bag.Add(Diagnostic{Severity: SevInfo, Code: ConstUnused, Subject: "A"})
	}
	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
}

func TestBagSortIsDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(Diagnostic{Severity: SevInfo, Code: ConstUnused, Path: "b.move", Subject: "Y"})
	bag.Add(Diagnostic{Severity: SevInfo, Code: ConstUnused, Path: "a.move", Subject: "Y"})
	bag.Add(Diagnostic{Severity: SevError, Code: IOWriteFileError, Path: "a.move"})
	bag.Add(Diagnostic{Severity: SevInfo, Code: ConstUnused, Path: "a.move", Subject: "X"})
	bag.Sort()

	items := bag.Items()
	want := []struct {
		path    string
		code    Code
		subject string
	}{
		{"a.move", IOWriteFileError, ""},
		{"a.move", ConstUnused, "X"},
		{"a.move", ConstUnused, "Y"},
		{"b.move", ConstUnused, "Y"},
	}
	for i, w := range want {
		if items[i].Path != w.path || items[i].Code != w.code || items[i].Subject != w.subject {
			t.Fatalf("item %d = %+v, want %+v", i, items[i], w)
		}
	}
}

func TestBagConcurrentAdd(t *testing.T) {
	bag := NewBag(1000)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				BagReporter{Bag: bag}.Report(Diagnostic{Code: ConstUnused})
			}
		}()
	}
	wg.Wait()
	if bag.Len() != 400 {
		t.Fatalf("expected 400 diagnostics, got %d", bag.Len())
	}
}

func TestDedupReporterSuppressesRepeats(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	d := Diagnostic{Severity: SevWarning, Code: ConstCycle, Subject: "A", Message: "cycle"}
	r.Report(d)
	r.Report(d)
	d.Subject = "B"
	r.Report(d)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestPathReporterStampsPath(t *testing.T) {
	bag := NewBag(4)
	r := PathReporter{Path: "sources/a.move", Next: BagReporter{Bag: bag}}
	ReportInfo(r, ConstUnused, "", "X", "Unused: X")
	ReportInfo(r, ConstUnused, "other.move", "Y", "Unused: Y")

	items := bag.Items()
	if items[0].Path != "sources/a.move" {
		t.Fatalf("expected stamped path, got %q", items[0].Path)
	}
	if items[1].Path != "other.move" {
		t.Fatalf("expected explicit path to win, got %q", items[1].Path)
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		ConstUnused:           "CST1001",
		RewriteUpdated:        "RWR2001",
		IOWriteFileError:      "IO4002",
		NotifyUpdateAvailable: "NTF6001",
		UnknownCode:           "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", code, got, want)
		}
	}
}
