package pricing

import (
	"strings"
	"testing"
)

func TestCalculateMultiPage_EndToEnd(t *testing.T) {
	snap := newTestSnapshot(t)

	// 20 pages duplex (staple default) => 10 sheets per copy.
	// print 100*10*0.5 + binding 100*1 + paper 100*10*0.1 = 700.
	res, err := CalculateMultiPage(snap, MultiPageInput{
		Pages: 20, Quantity: 100,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none",
	})
	if err != nil {
		t.Fatalf("CalculateMultiPage: %v", err)
	}
	if res.Sheets != 10 {
		t.Fatalf("sheets = %d, want 10", res.Sheets)
	}
	if !res.Duplex {
		t.Fatal("staple default should resolve duplex=true")
	}
	wantDecimal(t, "total", res.TotalCost, "700")
	wantDecimal(t, "price per item", res.PricePerItem, "7")
	wantDecimal(t, "print", res.Breakdown.Print, "500")
	wantDecimal(t, "binding", res.Breakdown.Binding, "100")
	wantDecimal(t, "paper", res.Breakdown.Paper, "100")
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestCalculateMultiPage_DuplexHalvesSheets(t *testing.T) {
	snap := newTestSnapshot(t)
	base := MultiPageInput{
		Pages: 20, Quantity: 10,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none",
	}

	simplex := base
	simplex.Duplex = boolPtr(false)
	one, err := CalculateMultiPage(snap, simplex)
	if err != nil {
		t.Fatalf("simplex: %v", err)
	}

	duplex := base
	duplex.Duplex = boolPtr(true)
	two, err := CalculateMultiPage(snap, duplex)
	if err != nil {
		t.Fatalf("duplex: %v", err)
	}

	if one.Sheets != 20 || two.Sheets != 10 {
		t.Fatalf("sheets simplex/duplex = %d/%d, want 20/10", one.Sheets, two.Sheets)
	}

	// Odd page counts round up.
	odd := base
	odd.Pages = 21
	odd.Duplex = boolPtr(true)
	res, err := CalculateMultiPage(snap, odd)
	if err != nil {
		t.Fatalf("odd duplex: %v", err)
	}
	if res.Sheets != 11 {
		t.Fatalf("21 pages duplex = %d sheets, want 11", res.Sheets)
	}
}

func TestCalculateMultiPage_BindingViolationIsAdvisory(t *testing.T) {
	res, err := CalculateMultiPage(newTestSnapshot(t), MultiPageInput{
		Pages: 80, Quantity: 10,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none",
	})
	if err != nil {
		t.Fatalf("out-of-range pages must still price: %v", err)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "60") {
		t.Fatalf("warnings = %v, want one naming the 60-page bound", res.Warnings)
	}
	if res.TotalCost.IsZero() {
		t.Fatal("price must still be produced")
	}
}

func TestCalculateMultiPage_SetupAndFinishing(t *testing.T) {
	res, err := CalculateMultiPage(newTestSnapshot(t), MultiPageInput{
		Pages: 20, Quantity: 100,
		PrintType: "color", BindingType: "staple",
		PaperType: "coated", PaperDensity: 130,
		Lamination: "matte", TrimMargins: true,
	})
	if err != nil {
		t.Fatalf("CalculateMultiPage: %v", err)
	}
	// 10 sheets/copy: print 1000*2=2000, setup 150, binding 100,
	// paper 1000*0.35=350, lamination 100*0.8=80, trim 100*0.2=20.
	wantDecimal(t, "setup", res.Breakdown.Setup, "150")
	wantDecimal(t, "lamination", res.Breakdown.Lamination, "80")
	wantDecimal(t, "trim", res.Breakdown.Trim, "20")
	wantDecimal(t, "total", res.TotalCost, "2700")
	wantDecimal(t, "price per item", res.PricePerItem, "27")
}

func TestCalculateMultiPage_InvalidInputs(t *testing.T) {
	snap := newTestSnapshot(t)
	valid := MultiPageInput{
		Pages: 20, Quantity: 100,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none",
	}

	cases := []struct {
		name      string
		mutate    func(*MultiPageInput)
		wantField string
	}{
		{"too few pages", func(in *MultiPageInput) { in.Pages = 3 }, "pages"},
		{"zero quantity", func(in *MultiPageInput) { in.Quantity = 0 }, "quantity"},
		{"unknown print type", func(in *MultiPageInput) { in.PrintType = "riso" }, "print_type"},
		{"unknown binding", func(in *MultiPageInput) { in.BindingType = "glue" }, "binding_type"},
		{"unknown paper", func(in *MultiPageInput) { in.PaperType = "vellum" }, "paper_type"},
		{"unknown lamination", func(in *MultiPageInput) { in.Lamination = "soft_touch" }, "lamination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := CalculateMultiPage(snap, in)
			if KindOf(err) != KindInvalidArgument {
				t.Fatalf("kind = %v, want invalid_argument", KindOf(err))
			}
			if FieldOf(err) != tc.wantField {
				t.Fatalf("field = %q, want %q", FieldOf(err), tc.wantField)
			}
		})
	}
}

func TestCalculateMultiPage_MissingTrimRateIsUnprocessable(t *testing.T) {
	snap := newTestSnapshot(t)
	delete(snap.FinishingRates, "trim")
	_, err := CalculateMultiPage(snap, MultiPageInput{
		Pages: 20, Quantity: 10,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none", TrimMargins: true,
	})
	if KindOf(err) != KindUnprocessable {
		t.Fatalf("kind = %v, want unprocessable", KindOf(err))
	}
}

func TestMultiPageResult_Rounded(t *testing.T) {
	res, err := CalculateMultiPage(newTestSnapshot(t), MultiPageInput{
		Pages: 21, Quantity: 3,
		PrintType: "bw", BindingType: "staple",
		PaperType: "offset", PaperDensity: 80,
		Lamination: "none",
	})
	if err != nil {
		t.Fatalf("CalculateMultiPage: %v", err)
	}
	rounded := res.Rounded()
	if rounded.PricePerItem.Exponent() < -2 {
		t.Fatalf("rounded price per item still has %d decimals: %s",
			-rounded.PricePerItem.Exponent(), rounded.PricePerItem)
	}
}
