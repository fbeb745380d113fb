package mcu

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"systime/tinycompress"
)

// Largest dictionary accepted from a board
const maxDictionarySize = 64 * 1024

// Message is one dictionary entry
type Message struct {
	ID     uint16
	Name   string
	Format string
}

// Dictionary is the board's self-description fetched with identify
type Dictionary struct {
	Version   string
	Constants map[string]string
	Messages  []Message
}

// Lookup returns the message registered as name
func (d *Dictionary) Lookup(name string) (Message, bool) {
	for _, msg := range d.Messages {
		if msg.Name == name {
			return msg, true
		}
	}
	return Message{}, false
}

// Identify downloads and parses the board's dictionary
func (m *MCU) Identify(ctx context.Context) (*Dictionary, error) {
	var stream []byte
	for {
		chunk, err := m.identifyChunk(ctx, uint32(len(stream)))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch dictionary at offset %d: %w", len(stream), err)
		}
		if len(chunk) == 0 {
			break
		}
		stream = append(stream, chunk...)
		if len(stream) > maxDictionarySize {
			return nil, fmt.Errorf("dictionary exceeds %d bytes", maxDictionarySize)
		}
	}
	m.log.Debug("fetched dictionary", zap.Int("compressed_bytes", len(stream)))

	text, err := tinycompress.Decode(stream)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress dictionary: %w", err)
	}
	return ParseDictionary(string(text))
}

// ParseDictionary parses the text form of a dictionary
func ParseDictionary(text string) (*Dictionary, error) {
	d := &Dictionary{Constants: make(map[string]string)}

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		kind, rest, _ := strings.Cut(line, " ")
		switch kind {
		case "version":
			d.Version = rest
		case "constant":
			name, value, ok := strings.Cut(rest, " ")
			if !ok {
				return nil, fmt.Errorf("dictionary line %d: constant without value", lineNo)
			}
			d.Constants[name] = value
		case "message":
			idText, def, _ := strings.Cut(rest, " ")
			id, err := strconv.ParseUint(idText, 10, 16)
			if err != nil {
				return nil, fmt.Errorf("dictionary line %d: bad message id: %w", lineNo, err)
			}
			name, format, _ := strings.Cut(def, " ")
			if name == "" {
				return nil, fmt.Errorf("dictionary line %d: message without name", lineNo)
			}
			d.Messages = append(d.Messages, Message{ID: uint16(id), Name: name, Format: format})
		default:
			return nil, fmt.Errorf("dictionary line %d: unknown entry %q", lineNo, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(d.Messages, func(i, j int) bool { return d.Messages[i].ID < d.Messages[j].ID })
	return d, nil
}
