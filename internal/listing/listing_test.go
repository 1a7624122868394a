package listing

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/carverdict/internal/report"
	"github.com/dshills/carverdict/internal/vehicle"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTempFile(t, "listing.yaml", `
vin: 1hgcm82633a004352
make: Honda
model: Accord
mileage: 64000
askingPrice: 14500
location: Houston, TX
tier: paid
daysListed: 33
`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := Request{
		VIN:         "1hgcm82633a004352",
		Make:        "Honda",
		Model:       "Accord",
		Mileage:     64000,
		AskingPrice: 14500,
		Location:    "Houston, TX",
		Tier:        report.TierPaid,
		DaysListed:  33,
	}
	if diff := cmp.Diff(want, f.Request); diff != "" {
		t.Errorf("request mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(f.Hash, "sha256:") {
		t.Errorf("expected sha256 prefix, got %s", f.Hash)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTempFile(t, "listing.json", `{"year": 2019, "make": "Toyota", "model": "Camry", "askingPrice": 18000, "tier": "free"}`)
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Request.Year != 2019 || f.Request.AskingPrice != 18000 || f.Request.Tier != report.TierFree {
		t.Errorf("unexpected request %+v", f.Request)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/listing.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNormalize(t *testing.T) {
	r := Request{VIN: " 1hgcm82633a004352 ", Make: " Honda ", Tier: " PAID "}.Normalize()
	if r.VIN != "1HGCM82633A004352" || r.Make != "Honda" || r.Tier != report.TierPaid {
		t.Errorf("normalize = %+v", r)
	}
	if got := (Request{}).Normalize().Tier; got != report.TierFree {
		t.Errorf("default tier = %s, want free", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		req        Request
		wantErr    bool
		malformVIN bool
	}{
		{"minimal", Request{AskingPrice: 1, Tier: report.TierFree}, false, false},
		{"zero price", Request{Tier: report.TierFree}, true, false},
		{"negative price", Request{AskingPrice: -5, Tier: report.TierFree}, true, false},
		{"bad tier", Request{AskingPrice: 100, Tier: "gold"}, true, false},
		{"short vin", Request{AskingPrice: 100, Tier: report.TierFree, VIN: "ABC123"}, true, true},
		{"vin with O", Request{AskingPrice: 100, Tier: report.TierFree, VIN: "1HGCM82633O004352"}, true, true},
		{"old year", Request{AskingPrice: 100, Tier: report.TierFree, Year: 1950}, true, false},
		{"negative mileage", Request{AskingPrice: 100, Tier: report.TierFree, Mileage: -1}, true, false},
		{"full", Request{AskingPrice: 100, Tier: report.TierPaid, VIN: "1HGCM82633A004352", Year: 2003, Mileage: 1}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("error does not wrap ErrInvalidRequest: %v", err)
			}
			if got := errors.Is(err, vehicle.ErrMalformedVIN); got != tt.malformVIN {
				t.Errorf("errors.Is(ErrMalformedVIN) = %v, want %v", got, tt.malformVIN)
			}
		})
	}
}

func TestHashStable(t *testing.T) {
	r := Request{VIN: "1HGCM82633A004352", AskingPrice: 9000, Tier: report.TierFree}
	if Hash(r) != Hash(r) {
		t.Error("hash is not stable")
	}
	r2 := r
	r2.AskingPrice = 9001
	if Hash(r) == Hash(r2) {
		t.Error("different requests hashed equal")
	}
}
