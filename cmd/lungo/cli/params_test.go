// Copyright 2026 The Lungo Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"
)

func TestBindFlagsAllTypes(t *testing.T) {
	type params struct {
		Serial   string        `flag:"serial,s" desc:"machine serial number"`
		Wait     bool          `flag:"wait" desc:"wait for the boiler"`
		Count    int           `flag:"count" default:"3"`
		Size     int64         `flag:"size" default:"1024"`
		Timeout  time.Duration `flag:"timeout" default:"30s"`
		Tags     []string      `flag:"tags" default:"a,b"`
		Untagged string
	}

	var p params
	flagSet := FlagsFromParams("test", &p)

	if err := flagSet.Parse([]string{"--serial", "SN123", "--wait", "--timeout", "1m"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Serial != "SN123" {
		t.Errorf("Serial = %q", p.Serial)
	}
	if !p.Wait {
		t.Error("Wait not set")
	}
	if p.Count != 3 {
		t.Errorf("Count default = %d, want 3", p.Count)
	}
	if p.Size != 1024 {
		t.Errorf("Size default = %d, want 1024", p.Size)
	}
	if p.Timeout != time.Minute {
		t.Errorf("Timeout = %v, want 1m", p.Timeout)
	}
	if len(p.Tags) != 2 || p.Tags[0] != "a" || p.Tags[1] != "b" {
		t.Errorf("Tags default = %v", p.Tags)
	}
}

func TestBindFlagsShorthand(t *testing.T) {
	type params struct {
		Serial string `flag:"serial,s"`
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"-s", "SN9"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Serial != "SN9" {
		t.Errorf("Serial = %q", p.Serial)
	}
}

func TestBindFlagsEmbedded(t *testing.T) {
	type params struct {
		JSONOutput
		Serial string `flag:"serial"`
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !p.OutputJSON {
		t.Error("embedded --json flag not bound")
	}
}

func TestBindFlagsRejectsNonStruct(t *testing.T) {
	var s string
	if err := BindFlags(&s, nil); err == nil {
		t.Error("BindFlags on non-struct succeeded")
	}
	if err := BindFlags(struct{}{}, nil); err == nil {
		t.Error("BindFlags on non-pointer succeeded")
	}
}

func TestBindFlagsBadDefault(t *testing.T) {
	type params struct {
		Count int `flag:"count" default:"not-a-number"`
	}
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic on bad default")
		}
	}()
	var p params
	FlagsFromParams("test", &p)
}
