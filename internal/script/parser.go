package script

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dshills/mackerel/internal/input"
	"github.com/dshills/mackerel/internal/input/key"
	"github.com/dshills/mackerel/internal/input/macro"
	"github.com/dshills/mackerel/internal/input/mouse"
)

// Parse parses a whole script into macros, in file order.
// Only whitespace may follow the last macro.
func Parse(text string) ([]macro.Macro, error) {
	p := &parser{src: text}
	return p.file()
}

// ParseFile reads and parses the script at path.
func ParseFile(path string) ([]macro.Macro, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}

	macros, err := Parse(string(data))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return macros, nil
}

// target is a button or key named in a script.
type target struct {
	isKey  bool
	button mouse.Button
	key    key.Key
}

func (t target) press() input.Event {
	if t.isKey {
		return input.KeyPress(t.key)
	}
	return input.ButtonPress(t.button)
}

func (t target) release() input.Event {
	if t.isKey {
		return input.KeyRelease(t.key)
	}
	return input.ButtonRelease(t.button)
}

// parser is a recursive descent parser over the script text.
type parser struct {
	src string
	pos int
}

func (p *parser) file() ([]macro.Macro, error) {
	var macros []macro.Macro
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		m, err := p.macro()
		if err != nil {
			return nil, err
		}
		macros = append(macros, m)
	}

	if len(macros) == 0 {
		return nil, p.failErr(p.pos, "expected a macro", ErrNoMacros)
	}
	return macros, nil
}

// macro := trigger ws '{' (ws action_line)+ ws '}'
func (p *parser) macro() (macro.Macro, error) {
	line, _ := p.location(p.pos)

	trigger, err := p.trigger()
	if err != nil {
		return macro.Macro{}, err
	}

	p.skipSpace()
	if !p.consume("{") {
		return macro.Macro{}, p.fail(p.pos, "expected '{' after trigger")
	}

	var actions []macro.Action
	for {
		p.skipSpace()
		if p.peek("}") {
			break
		}
		if p.eof() {
			return macro.Macro{}, p.fail(p.pos, "expected '}' to close macro")
		}
		lineActions, err := p.actionLine()
		if err != nil {
			return macro.Macro{}, err
		}
		actions = append(actions, lineActions...)
	}

	if len(actions) == 0 {
		return macro.Macro{}, p.fail(p.pos, "expected at least one action")
	}
	p.consume("}")

	return macro.Macro{Trigger: trigger, Actions: actions, Line: line}, nil
}

// trigger := press_token (ws '+' ws press_token)*
func (p *parser) trigger() (macro.Trigger, error) {
	first, err := p.target()
	if err != nil {
		return nil, err
	}
	events := []input.Event{first.release()}

	for {
		save := p.pos
		p.skipSpace()
		if !p.consume("+") {
			p.pos = save
			break
		}
		p.skipSpace()
		t, err := p.target()
		if err != nil {
			return nil, err
		}
		events = append(events, t.release())
	}

	if len(events) == 1 {
		return macro.Single{Event: events[0]}, nil
	}
	return macro.Combo{Events: events}, nil
}

// action_line := action space* statement_end
func (p *parser) actionLine() ([]macro.Action, error) {
	actions, err := p.action()
	if err != nil {
		return nil, err
	}

	p.skipBlanks()
	if !p.statementEnd() {
		return nil, p.fail(p.pos, "expected end of line after action")
	}
	return actions, nil
}

func (p *parser) action() ([]macro.Action, error) {
	start := p.pos
	switch {
	case p.consume("press"):
		t, err := p.targetAfterBlank("press")
		if err != nil {
			return nil, err
		}
		return []macro.Action{macro.Emit{Event: t.press()}, macro.Emit{Event: t.release()}}, nil

	case p.consume("hold"):
		t, err := p.targetAfterBlank("hold")
		if err != nil {
			return nil, err
		}
		return []macro.Action{macro.Emit{Event: t.press()}}, nil

	case p.consume("release"):
		t, err := p.targetAfterBlank("release")
		if err != nil {
			return nil, err
		}
		return []macro.Action{macro.Emit{Event: t.release()}}, nil

	case p.consume("move to"):
		a, err := p.moveTarget()
		if err != nil {
			return nil, err
		}
		return []macro.Action{a}, nil

	case p.consume("wait"):
		if p.skipBlanks() == 0 {
			return nil, p.fail(p.pos, "expected space after \"wait\"")
		}
		ms, err := p.seconds()
		if err != nil {
			return nil, err
		}
		return []macro.Action{macro.Wait{Millis: ms}}, nil
	}

	return nil, p.fail(start, "expected an action (press, hold, release, move to, wait)")
}

func (p *parser) targetAfterBlank(keyword string) (target, error) {
	if p.skipBlanks() == 0 {
		return target{}, p.fail(p.pos, fmt.Sprintf("expected space after %q", keyword))
	}
	return p.target()
}

// target := 'Mouse' ('Left'|'Right'|'Middle'|digits) | key_name
func (p *parser) target() (target, error) {
	start := p.pos
	if !p.consume("Mouse") {
		return p.keyTarget()
	}

	switch {
	case p.consume("Left"):
		return target{button: mouse.ButtonLeft}, nil
	case p.consume("Right"):
		return target{button: mouse.ButtonRight}, nil
	case p.consume("Middle"):
		return target{button: mouse.ButtonMiddle}, nil
	}

	digitsAt := p.pos
	digits := p.digits()
	if digits == "" {
		return target{}, p.fail(digitsAt, "expected Left, Right, Middle or a button number after \"Mouse\"")
	}
	n, err := strconv.ParseUint(digits, 10, 8)
	if err != nil {
		return target{}, p.failErr(start, "invalid mouse button", ErrOutOfRange)
	}
	return target{button: mouse.Numbered(uint8(n))}, nil
}

func (p *parser) keyTarget() (target, error) {
	start := p.pos
	name := p.word()
	if name == "" {
		p.pos = start
		return target{}, p.fail(start, "expected a mouse button or key")
	}

	k, err := key.Parse(name)
	if err != nil {
		p.pos = start
		return target{}, p.failErr(start, "invalid key", err)
	}
	return target{isKey: true, key: k}, nil
}

// move_target := ws1 ('start' | x ws ',' ws y)
func (p *parser) moveTarget() (macro.Action, error) {
	if p.skipSpace() == 0 {
		return nil, p.fail(p.pos, "expected space after \"move to\"")
	}
	if p.consume("start") {
		return macro.ReturnToStart{}, nil
	}

	x, err := p.coordinate()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.consume(",") {
		return nil, p.fail(p.pos, "expected ',' between coordinates")
	}
	p.skipSpace()
	y, err := p.coordinate()
	if err != nil {
		return nil, err
	}
	return macro.Emit{Event: input.Move(float64(x), float64(y))}, nil
}

func (p *parser) coordinate() (int32, error) {
	start := p.pos
	digits := p.digits()
	if digits == "" {
		return 0, p.fail(start, "expected \"start\" or a coordinate")
	}
	v, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return 0, p.failErr(start, "invalid coordinate", ErrOutOfRange)
	}
	return int32(v), nil
}

// seconds parses "<whole>[.<fraction>]" into milliseconds. Only the first
// three fraction digits count and they are read directly as milliseconds.
func (p *parser) seconds() (uint32, error) {
	start := p.pos
	whole := p.digits()
	if whole == "" {
		return 0, p.fail(start, "expected a duration in seconds")
	}

	var frac string
	if p.peek(".") && p.pos+1 < len(p.src) && isDigit(p.src[p.pos+1]) {
		p.pos++
		frac = p.digits()
	}

	ms, err := millis(whole, frac)
	if err != nil {
		return 0, p.failErr(start, "invalid duration", err)
	}
	return ms, nil
}

// millis computes whole*1000 + the first three digits of frac.
func millis(whole, frac string) (uint32, error) {
	w, err := strconv.ParseUint(whole, 10, 32)
	if err != nil {
		return 0, ErrOutOfRange
	}

	if len(frac) > 3 {
		frac = frac[:3]
	}
	var f uint64
	if frac != "" {
		frac += strings.Repeat("0", 3-len(frac))
		f, _ = strconv.ParseUint(frac, 10, 16)
	}

	total := w*1000 + f
	if total > math.MaxUint32 {
		return 0, ErrOutOfRange
	}
	return uint32(total), nil
}

// statement_end := line_ending | end_of_input
func (p *parser) statementEnd() bool {
	return p.consume("\r\n") || p.consume("\n") || p.eof()
}

// ==================== Lexical Helpers ====================

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek(s string) bool {
	return strings.HasPrefix(p.src[p.pos:], s)
}

func (p *parser) consume(s string) bool {
	if !p.peek(s) {
		return false
	}
	p.pos += len(s)
	return true
}

// skipSpace skips spaces, tabs and line endings.
func (p *parser) skipSpace() int {
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return p.pos - start
		}
	}
	return p.pos - start
}

// skipBlanks skips spaces and tabs only.
func (p *parser) skipBlanks() int {
	start := p.pos
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	return p.pos - start
}

func (p *parser) digits() string {
	start := p.pos
	for !p.eof() && isDigit(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// word reads up to the next whitespace or structural character.
func (p *parser) word() string {
	start := p.pos
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n', '{', '}', '+':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// location returns the 1-based line and rune column of a byte offset.
func (p *parser) location(offset int) (line, column int) {
	before := p.src[:offset]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	column = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, column
}

func (p *parser) fail(offset int, msg string) error {
	return p.failErr(offset, msg, nil)
}

func (p *parser) failErr(offset int, msg string, err error) error {
	line, column := p.location(offset)
	return &ParseError{
		Line:      line,
		Column:    column,
		Offset:    offset,
		Remainder: p.src[offset:],
		Message:   msg,
		Err:       err,
	}
}
