package core

import (
	"sync"

	"systime/tinycompress"
)

// FirmwareVersion is reported in the dictionary
const FirmwareVersion = "systime-0.1.0"

// Dictionary describes the firmware to the host: its version, constants such
// as the counter frequency, and every registered message with its wire ID.
//
// The text form is one entry per line:
//
//	version systime-0.1.0
//	constant CLOCK_FREQ 1000000
//	message 0 time_report ticks=%u msec=%u sec=%u offset=%i
//
// It is sent zlib-wrapped in chunks through identify
type Dictionary struct {
	mu        sync.Mutex
	registry  *CommandRegistry
	version   string
	constants []Constant

	cached      []byte
	cachedCount int // registry size when cached was built
}

// Constant is a named firmware value exposed to the host
type Constant struct {
	Name  string
	Value string
}

// NewDictionary creates a dictionary over registry
func NewDictionary(registry *CommandRegistry, version string) *Dictionary {
	return &Dictionary{registry: registry, version: version}
}

// AddConstant adds or replaces a constant
func (d *Dictionary) AddConstant(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = nil
	for i := range d.constants {
		if d.constants[i].Name == name {
			d.constants[i].Value = value
			return
		}
	}
	d.constants = append(d.constants, Constant{Name: name, Value: value})
}

// AddConstantUint adds a numeric constant
func (d *Dictionary) AddConstantUint(name string, value uint32) {
	d.AddConstant(name, utoa(value))
}

// Text returns the uncompressed dictionary
func (d *Dictionary) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.buildLocked())
}

// Compressed returns the zlib-wrapped dictionary. The result is cached until
// a constant or message is added; callers must not modify it
func (d *Dictionary) Compressed() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	if count := d.registry.Count(); d.cached == nil || d.cachedCount != count {
		d.cached = tinycompress.Encode(d.buildLocked())
		d.cachedCount = count
		DebugPrintln("systime: dictionary " + utoa(uint32(len(d.cached))) + " bytes")
	}
	return d.cached
}

// Chunk returns up to count bytes of the compressed dictionary starting at
// offset. An offset at or past the end gives an empty chunk
func (d *Dictionary) Chunk(offset uint32, count uint8) []byte {
	data := d.Compressed()
	if offset >= uint32(len(data)) {
		return nil
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	return data[offset:end]
}

func (d *Dictionary) buildLocked() []byte {
	out := make([]byte, 0, 512)
	out = append(out, "version "...)
	out = append(out, d.version...)
	out = append(out, '\n')

	for _, c := range d.constants {
		out = append(out, "constant "...)
		out = append(out, c.Name...)
		out = append(out, ' ')
		out = append(out, c.Value...)
		out = append(out, '\n')
	}

	for _, cmd := range d.registry.Commands() {
		out = append(out, "message "...)
		out = append(out, utoa(uint32(cmd.ID))...)
		out = append(out, ' ')
		out = append(out, cmd.Name...)
		if cmd.Format != "" {
			out = append(out, ' ')
			out = append(out, cmd.Format...)
		}
		out = append(out, '\n')
	}
	return out
}
