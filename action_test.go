package main

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dbrjs11/scan-far-to-near/agent/go-service/region"
)

func TestParseFrameDetail(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		ok        bool
		decoded   int
		hasScore  bool
		sharpness float64
	}{
		{
			name:      "direct",
			raw:       `{"session":"s","decoded":0,"localized":2,"skipped":0,"best_index":1,"sharpness":120.5,"has_score":true}`,
			ok:        true,
			hasScore:  true,
			sharpness: 120.5,
		},
		{
			name:      "wrapped",
			raw:       `{"best":{"detail":{"decoded":0,"localized":1,"best_index":0,"sharpness":42,"has_score":true}}}`,
			ok:        true,
			hasScore:  true,
			sharpness: 42,
		},
		{
			name:    "decoded without regions",
			raw:     `{"decoded":1,"localized":0,"best_index":-1,"sharpness":null,"has_score":false}`,
			ok:      true,
			decoded: 1,
		},
		{name: "garbage", raw: `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := parseFrameDetail(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if d.Decoded != tt.decoded || d.HasScore != tt.hasScore {
				t.Errorf("detail = %+v", d)
			}
			if tt.hasScore && (d.Sharpness == nil || *d.Sharpness != tt.sharpness) {
				t.Errorf("sharpness = %v, want %v", d.Sharpness, tt.sharpness)
			}
		})
	}
}

func TestUnmarshalParam(t *testing.T) {
	var p frameSharpnessParam
	if err := unmarshalParam(`{"session":"a","quads":[[[0,0],[4,0],[4,4],[0,4]]]}`, &p); err != nil {
		t.Fatal(err)
	}
	if p.Session != "a" || len(p.Quads) != 1 || p.Quads[0][2] != [2]float64{4, 4} {
		t.Errorf("param = %+v", p)
	}

	var q frameHealthParam
	if err := unmarshalParam(`"{\"zoom_min\":1,\"zoom_max\":8,\"zoom\":3}"`, &q); err != nil {
		t.Fatal(err)
	}
	if q.ZoomMax != 8 || q.Zoom != 3 {
		t.Errorf("param = %+v", q)
	}

	if err := unmarshalParam(`[1,2`, &q); err == nil {
		t.Error("unmarshalParam() accepted broken JSON")
	}
	if err := unmarshalParam("", &q); err != nil {
		t.Errorf("empty param error = %v", err)
	}
}

func TestBoundsRect(t *testing.T) {
	q := region.Quad{{X: 10.5, Y: 2}, {X: 20.9, Y: 2}, {X: 20.9, Y: 7.5}, {X: 10.5, Y: 7.5}}
	r := boundsRect(q)
	if r.X() != 11 || r.Y() != 2 || r.Width() != 10 || r.Height() != 5 {
		t.Errorf("boundsRect() = %v", r)
	}
}

func TestMinLevelWriter(t *testing.T) {
	var buf bytes.Buffer
	w := minLevelWriter{w: &buf, min: zerolog.ErrorLevel}

	if n, err := w.WriteLevel(zerolog.InfoLevel, []byte("info\n")); err != nil || n != 5 {
		t.Fatalf("WriteLevel(info) = %d, %v", n, err)
	}
	if buf.Len() != 0 {
		t.Errorf("info written: %q", buf.String())
	}
	w.WriteLevel(zerolog.ErrorLevel, []byte("error\n"))
	if buf.String() != "error\n" {
		t.Errorf("buffer = %q", buf.String())
	}
}

func TestFocusDisplayOverlappingCalls(t *testing.T) {
	var ds displays
	a, b := ds.get("a"), ds.get("b")
	if a == b || ds.get("a") != a {
		t.Fatal("get() should return one display per session")
	}

	var gotA, gotB []string
	unbindA := a.bind(func(msg string) { gotA = append(gotA, msg) })
	unbindB := b.bind(func(msg string) { gotB = append(gotB, msg) })
	unbindA()

	b.Show("closer")
	if len(gotB) != 1 || len(gotA) != 0 {
		t.Errorf("shown a=%v b=%v, want only b", gotA, gotB)
	}
	unbindB()
	b.Show("ignored")
	if len(gotB) != 1 {
		t.Errorf("unbound display still shows: %v", gotB)
	}

	// An older call finishing must not clear a newer call's binding.
	var first, second []string
	unbindFirst := a.bind(func(msg string) { first = append(first, msg) })
	unbindSecond := a.bind(func(msg string) { second = append(second, msg) })
	unbindFirst()
	a.Show("closer")
	if len(second) != 1 || len(first) != 0 {
		t.Errorf("shown first=%v second=%v, want only second", first, second)
	}
	unbindSecond()

	ds.drop("a")
	if ds.get("a") == a {
		t.Error("drop() kept the display")
	}
}
