package shader

import (
	"errors"
	"strings"
	"testing"
)

const extraKernel = `
@compute @workgroup_size(8, 8, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    var texel: u32 = id.x * 2u + id.y;
}
`

func TestNames(t *testing.T) {
	want := []string{Blur, Composite, Grade, Raymarch, Worley}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSource(t *testing.T) {
	for _, name := range Names() {
		src, err := Source(name)
		if err != nil {
			t.Fatalf("Source(%q) error = %v", name, err)
		}
		if !strings.Contains(src, "@compute") {
			t.Errorf("Source(%q) has no compute entry point", name)
		}
	}
	if _, err := Source("missing"); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("Source(missing) error = %v, want ErrUnknownKernel", err)
	}
}

func TestCompileProbe(t *testing.T) {
	c := NewCompiler(WithValidation(false), WithSource("extra", extraKernel))

	words, err := c.Compile("extra")
	if err != nil {
		t.Fatalf("Compile(extra) error = %v", err)
	}
	if words[0] != SPIRVMagic {
		t.Errorf("magic = %#08x, want %#08x", words[0], SPIRVMagic)
	}
}

func TestCompileCaches(t *testing.T) {
	c := NewCompiler(WithValidation(false), WithSource("extra", extraKernel))

	first, err := c.Compile("extra")
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compile("extra")
	if err != nil {
		t.Fatal(err)
	}
	if &first[0] != &second[0] {
		t.Error("second Compile() did not return the cached module")
	}
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Len != 1 {
		t.Errorf("Stats() = %+v, want 1 hit 1 miss 1 entry", s)
	}
}

func TestCompileUnknown(t *testing.T) {
	c := NewCompiler()
	if err := c.Check("missing"); !errors.Is(err, ErrUnknownKernel) {
		t.Errorf("Check(missing) error = %v, want ErrUnknownKernel", err)
	}
	if c.Stats().Len != 0 {
		t.Error("failed compile was cached")
	}
}

func TestCompileEmbedded(t *testing.T) {
	c := NewCompiler(WithValidation(false))
	for name, err := range c.CompileAll() {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Logf("naga cannot compile %s yet: %v", name, err)
			continue
		}
		t.Logf("kernel %s did not compile: %v", name, err)
	}
}

func TestWords(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		wantErr bool
	}{
		{"magic only", []byte{0x03, 0x02, 0x23, 0x07}, false},
		{"empty", nil, true},
		{"ragged", []byte{0x03, 0x02, 0x23}, true},
		{"wrong magic", []byte{0x07, 0x23, 0x02, 0x03}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := Words(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Words() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && words[0] != SPIRVMagic {
				t.Errorf("Words()[0] = %#08x, want %#08x", words[0], SPIRVMagic)
			}
		})
	}
}
