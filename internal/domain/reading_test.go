package domain

import (
	"testing"
	"time"
)

func TestDecodeReading_AllFields(t *testing.T) {
	raw := []byte(`{"temp":93.5,"setpoint":96,"pressure":8.9,"brewTemp":92.1,"targetPressure":9,` +
		`"pumpDuty":74,"shotGrams":18250,"pumpOnTime":21.5,"brewSwitch":false,"preInfusing":true}`)

	r, err := DecodeReading(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Temp == nil || *r.Temp != 93.5 {
		t.Fatalf("unexpected temp %v", r.Temp)
	}
	if r.PumpDuty == nil || *r.PumpDuty != 74 {
		t.Fatalf("unexpected pump duty %v", r.PumpDuty)
	}
	if r.BrewSwitch == nil || *r.BrewSwitch {
		t.Fatalf("expected brewSwitch=false to be kept, got %v", r.BrewSwitch)
	}
	if !r.HasSample() {
		t.Fatalf("expected full message to carry a sample")
	}
	sample, _ := r.Sample(time.UnixMilli(42))
	if sample.ShotGrams != 18250 || sample.TargetPressure != 9 {
		t.Fatalf("unexpected sample %+v", sample)
	}
}

func TestDecodeReading_RejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{``, `not json`, `null`, `[1,2]`, `42`, `{"temp":`, `{"temp":"hot"}`} {
		if _, err := DecodeReading([]byte(raw)); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestDecodeReading_IgnoresUnknownFields(t *testing.T) {
	r, err := DecodeReading([]byte(`{"steam":true,"temp":120}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r.Temp == nil || *r.Temp != 120 {
		t.Fatalf("unexpected temp %v", r.Temp)
	}
	if r.HasSample() {
		t.Fatalf("expected no sample without brewTemp and pressure")
	}
}
