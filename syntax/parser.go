package syntax

import (
	"fmt"
	"unicode/utf8"
)

// Parse builds a lossless Tree from src. It never fails outright: on
// malformed input it records ParseErrors and does its best to keep
// consuming tokens so every byte still ends up somewhere in the tree,
// the same trade-off rnix makes (a tree you can still query beats no
// tree at all).
func Parse(src []byte) (*Tree, []ParseError) {
	p := &Parser{src: src, tree: &Tree{Src: src}}
	b := newBuilder(KindRoot, 0)
	p.skipTrivia(b)

	kind, _, _ := p.peekSig()
	var root *Node
	if kind == TokEOF {
		p.errs = append(p.errs, p.errAt(p.pos, "empty input"))
		root = p.finishNode(newBuilder(KindExpr, p.pos))
	} else {
		root = p.parseExpr()
	}
	b.pushNode(root)
	p.skipTrivia(b)

	for {
		kind, _, _ := p.peekSig()
		if kind == TokEOF {
			break
		}
		p.errs = append(p.errs, p.errAt(p.pos, "unexpected trailing input"))
		k, end := lexOne(p.src, p.pos)
		t := p.bumpRaw(k, end)
		b.pushToken(t)
		p.skipTrivia(b)
	}

	root2 := p.tree.finish(b, len(src))
	p.tree.Root = root2
	return p.tree, p.errs
}

// Position converts a byte offset into a 1-based (line, column) pair, with
// column counted in UTF-8 runes since the preceding newline (or start of
// file), matching the editor convention the report package renders against.
func Position(src []byte, offset int) (line, col int) {
	line, col = 1, 1
	for i := 0; i < offset && i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
		i += size
	}
	return line, col
}

func lineCol(src []byte, pos int) (int, int) { return Position(src, pos) }

// Parser drives recursive-descent parsing over an immutable source buffer.
// There is no global builder stack: every parseX function takes the
// builder it should attach trivia/tokens to explicitly, so trivia always
// ends up as a structural sibling of whatever it is adjacent to (the
// editor's sibling-extension rules depend on this).
type Parser struct {
	src  []byte
	pos  int
	tree *Tree
	errs []ParseError
}

func (p *Parser) errAt(pos int, msg string) ParseError {
	line, col := lineCol(p.src, pos)
	return ParseError{Pos: pos, Line: line, Column: col, Message: msg}
}

func (p *Parser) bumpRaw(kind TokKind, end int) *Token {
	t := p.tree.newToken(kind, p.pos, end)
	p.pos = end
	return t
}

// skipTrivia drains WHITESPACE/COMMENT tokens into b.
func (p *Parser) skipTrivia(b *nodeBuilder) {
	for {
		k, end := lexOne(p.src, p.pos)
		if k != TokWhitespace && k != TokComment {
			return
		}
		t := p.bumpRaw(k, end)
		b.pushToken(t)
	}
}

// peekSigFrom looks ahead from pos, skipping trivia, without consuming
// anything. It returns the next significant token's kind and its [start,end).
func (p *Parser) peekSigFrom(pos int) (TokKind, int, int) {
	for {
		k, end := lexOne(p.src, pos)
		if k == TokWhitespace || k == TokComment {
			pos = end
			continue
		}
		return k, pos, end
	}
}

func (p *Parser) peekSig() (TokKind, int, int) { return p.peekSigFrom(p.pos) }

// nextSigInto skips trivia into b, then consumes and pushes the following
// significant token (whatever it is) into b.
func (p *Parser) nextSigInto(b *nodeBuilder) *Token {
	p.skipTrivia(b)
	k, end := lexOne(p.src, p.pos)
	t := p.bumpRaw(k, end)
	b.pushToken(t)
	return t
}

// expect skips trivia into b, then requires the next token be kind, pushing
// it into b. On mismatch it records a ParseError and leaves pos untouched.
func (p *Parser) expect(b *nodeBuilder, kind TokKind) *Token {
	p.skipTrivia(b)
	k, end := lexOne(p.src, p.pos)
	if k != kind {
		p.errs = append(p.errs, p.errAt(p.pos, fmt.Sprintf("expected %s, found %s", kind, k)))
		return nil
	}
	t := p.bumpRaw(k, end)
	b.pushToken(t)
	return t
}

func (p *Parser) finishNode(b *nodeBuilder) *Node { return p.tree.finish(b, p.pos) }

// ---- expression dispatch -------------------------------------------------

func (p *Parser) parseExpr() *Node {
	kind, _, _ := p.peekSig()
	switch kind {
	case TokWith:
		return p.parseWith()
	case TokAssert:
		return p.parseAssert()
	case TokLet:
		return p.parseLetIn()
	case TokIf:
		return p.parseIf()
	}
	if p.looksLikeLambda() {
		return p.parseLambda()
	}
	return p.parseBinary(0)
}

func (p *Parser) parseWith() *Node {
	b := newBuilder(KindExpr, p.pos)
	p.nextSigInto(b) // with
	p.skipTrivia(b)
	e := p.parseExpr()
	b.pushNode(e)
	p.skipTrivia(b)
	p.expect(b, TokSemi)
	p.skipTrivia(b)
	body := p.parseExpr()
	b.pushNode(body)
	return p.finishNode(b)
}

func (p *Parser) parseAssert() *Node {
	b := newBuilder(KindExpr, p.pos)
	p.nextSigInto(b) // assert
	p.skipTrivia(b)
	cond := p.parseExpr()
	b.pushNode(cond)
	p.skipTrivia(b)
	p.expect(b, TokSemi)
	p.skipTrivia(b)
	body := p.parseExpr()
	b.pushNode(body)
	return p.finishNode(b)
}

func (p *Parser) parseIf() *Node {
	b := newBuilder(KindExpr, p.pos)
	p.nextSigInto(b) // if
	p.skipTrivia(b)
	cond := p.parseExpr()
	b.pushNode(cond)
	p.skipTrivia(b)
	p.expect(b, TokThen)
	p.skipTrivia(b)
	thenE := p.parseExpr()
	b.pushNode(thenE)
	p.skipTrivia(b)
	p.expect(b, TokElse)
	p.skipTrivia(b)
	elseE := p.parseExpr()
	b.pushNode(elseE)
	return p.finishNode(b)
}

// looksLikeLambda decides, by pure lookahead, whether the upcoming tokens
// form a lambda argument (`ident:`, `ident@`, or a `{...}` pattern
// followed by `:` or `@`) rather than a plain identifier or
// attribute set. It never consumes.
func (p *Parser) looksLikeLambda() bool {
	kind, _, end := p.peekSig()
	switch kind {
	case TokIdent:
		k2, _, _ := p.peekSigFrom(end)
		return k2 == TokColon || k2 == TokAt
	case TokLBrace:
		closeEnd := matchClose(p.src, end)
		k2, _, _ := p.peekSigFrom(closeEnd)
		return k2 == TokColon || k2 == TokAt
	}
	return false
}

func (p *Parser) parseLambda() *Node {
	b := newBuilder(KindLambda, p.pos)
	kind, _, end := p.peekSig()
	var arg *Node
	if kind == TokIdent {
		k2, _, _ := p.peekSigFrom(end)
		if k2 == TokAt {
			arg = p.parsePattern()
		} else {
			ib := newBuilder(KindIdentParam, p.pos)
			p.nextSigInto(ib)
			arg = p.finishNode(ib)
		}
	} else {
		arg = p.parsePattern()
	}
	b.pushNode(arg)
	b.field("arg", arg)
	p.skipTrivia(b)
	p.expect(b, TokColon)
	p.skipTrivia(b)
	body := p.parseExpr()
	b.pushNode(body)
	b.field("body", body)
	return p.finishNode(b)
}

// parsePattern parses `{ a, b ? e, ... }`, an optional leading `ident @`
// binder, and an optional trailing `@ ident` binder.
func (p *Parser) parsePattern() *Node {
	b := newBuilder(KindPattern, p.pos)

	if kind, _, _ := p.peekSig(); kind == TokIdent {
		bb := newBuilder(KindPatBind, p.pos)
		nameNode := p.parseIdentLeaf(bb)
		bb.pushNode(nameNode)
		bb.field("name", nameNode)
		p.skipTrivia(bb)
		p.nextSigInto(bb) // @
		bindNode := p.finishNode(bb)
		b.pushNode(bindNode)
		p.skipTrivia(b)
	}

	p.expect(b, TokLBrace)
	p.skipTrivia(b)
	for {
		kind, _, _ := p.peekSig()
		if kind == TokRBrace || kind == TokEOF {
			break
		}
		if kind == TokEllipsis {
			p.nextSigInto(b)
			p.skipTrivia(b)
			break
		}
		startPos := p.pos
		entry := p.parsePatEntry()
		b.pushNode(entry)
		p.skipTrivia(b)
		if k2, _, _ := p.peekSig(); k2 == TokComma {
			p.nextSigInto(b)
			p.skipTrivia(b)
		} else {
			break
		}
		if p.pos == startPos {
			break
		}
	}
	p.skipTrivia(b)
	p.expect(b, TokRBrace)

	if k2, _, _ := p.peekSig(); k2 == TokAt {
		bb := newBuilder(KindPatBind, p.pos)
		p.nextSigInto(bb) // @
		p.skipTrivia(bb)
		nameNode := p.parseIdentLeaf(bb)
		bb.pushNode(nameNode)
		bb.field("name", nameNode)
		bindNode := p.finishNode(bb)
		b.pushNode(bindNode)
	}
	return p.finishNode(b)
}

// parseIdentLeaf consumes one IDENT_TOKEN as a standalone KindIdent node
// (used for declaration names — PAT_ENTRY's name, PAT_BIND's binder — so
// Binding.Name can point at exactly the identifier's byte range, not at a
// container that might also span a default value or the "@" token).
func (p *Parser) parseIdentLeaf(outer *nodeBuilder) *Node {
	p.skipTrivia(outer)
	ib := newBuilder(KindIdent, p.pos)
	p.expect(ib, TokIdent)
	return p.finishNode(ib)
}

func (p *Parser) parsePatEntry() *Node {
	b := newBuilder(KindPatEntry, p.pos)
	nameNode := p.parseIdentLeaf(b)
	b.pushNode(nameNode)
	b.field("name", nameNode)
	p.skipTrivia(b)
	if k, _, _ := p.peekSig(); k == TokQuestion {
		p.nextSigInto(b)
		p.skipTrivia(b)
		def := p.parseExpr()
		b.pushNode(def)
		b.field("default", def)
	}
	return p.finishNode(b)
}

// ---- let/attrset bodies --------------------------------------------------

func (p *Parser) parseLetIn() *Node {
	b := newBuilder(KindLetIn, p.pos)
	p.nextSigInto(b) // let
	p.parseBindingsLoop(b, TokIn)
	p.skipTrivia(b)
	p.expect(b, TokIn)
	p.skipTrivia(b)
	body := p.parseExpr()
	b.pushNode(body)
	b.field("body", body)
	return p.finishNode(b)
}

// parseBindingsLoop consumes a run of INHERIT / ATTRPATH_VALUE entries into
// b, stopping just before closeKind (TokIn for a let, TokRBrace for an
// attribute set).
func (p *Parser) parseBindingsLoop(b *nodeBuilder, closeKind TokKind) {
	for {
		p.skipTrivia(b)
		kind, _, _ := p.peekSig()
		if kind == closeKind || kind == TokEOF {
			return
		}
		if kind == TokInherit {
			node := p.parseInherit()
			b.pushNode(node)
			continue
		}
		if kind != TokIdent && kind != TokStringOpen && kind != TokIndentStringOpen && kind != TokInterpOpen {
			p.errs = append(p.errs, p.errAt(p.pos, "expected a binding"))
			return
		}
		startPos := p.pos
		node := p.parseAttrpathValue()
		b.pushNode(node)
		if p.pos == startPos {
			return
		}
	}
}

func (p *Parser) parseAttrpathValue() *Node {
	b := newBuilder(KindAttrpathValue, p.pos)
	path := p.parseAttrpath()
	b.pushNode(path)
	b.field("path", path)
	p.skipTrivia(b)
	p.expect(b, TokEq)
	p.skipTrivia(b)
	val := p.parseExpr()
	b.pushNode(val)
	b.field("value", val)
	p.skipTrivia(b)
	p.expect(b, TokSemi)
	return p.finishNode(b)
}

func (p *Parser) parseInherit() *Node {
	b := newBuilder(KindInherit, p.pos)
	p.nextSigInto(b) // inherit
	p.skipTrivia(b)

	if kind, _, _ := p.peekSig(); kind == TokLParen {
		fb := newBuilder(KindInheritFrom, p.pos)
		p.nextSigInto(fb) // (
		p.skipTrivia(fb)
		expr := p.parseExpr()
		fb.pushNode(expr)
		p.skipTrivia(fb)
		p.expect(fb, TokRParen)
		fromNode := p.finishNode(fb)
		b.pushNode(fromNode)
		p.skipTrivia(b)
	}

	for {
		kind, _, _ := p.peekSig()
		if kind == TokSemi || kind == TokEOF {
			break
		}
		if kind != TokIdent && kind != TokStringOpen && kind != TokIndentStringOpen && kind != TokInterpOpen {
			break
		}
		attr := p.parseAttr()
		b.pushNode(attr)
		p.skipTrivia(b)
	}
	p.expect(b, TokSemi)
	return p.finishNode(b)
}

// ---- attrpaths -----------------------------------------------------------

func (p *Parser) parseAttrpath() *Node {
	b := newBuilder(KindAttrpath, p.pos)
	seg := p.parseAttr()
	b.pushNode(seg)
	for {
		kind, _, _ := p.peekSig()
		if kind != TokDot {
			break
		}
		p.nextSigInto(b)
		p.skipTrivia(b)
		seg2 := p.parseAttr()
		b.pushNode(seg2)
	}
	return p.finishNode(b)
}

func (p *Parser) parseAttr() *Node {
	kind, _, _ := p.peekSig()
	switch kind {
	case TokIdent:
		b := newBuilder(KindAttrIdent, p.pos)
		p.nextSigInto(b)
		return p.finishNode(b)
	case TokStringOpen:
		str := p.parseString(false)
		b := newBuilder(KindAttrString, str.Start)
		b.pushNode(str)
		return p.finishNode(b)
	case TokIndentStringOpen:
		str := p.parseString(true)
		b := newBuilder(KindAttrString, str.Start)
		b.pushNode(str)
		return p.finishNode(b)
	case TokInterpOpen:
		b := newBuilder(KindAttrDynamic, p.pos)
		p.nextSigInto(b) // ${
		p.skipTrivia(b)
		inner := p.parseExpr()
		b.pushNode(inner)
		p.skipTrivia(b)
		p.expect(b, TokRBrace)
		return p.finishNode(b)
	default:
		p.errs = append(p.errs, p.errAt(p.pos, fmt.Sprintf("expected an attribute name, found %s", kind)))
		b := newBuilder(KindAttrIdent, p.pos)
		if kind != TokEOF {
			k, end := lexOne(p.src, p.pos)
			t := p.bumpRaw(k, end)
			b.pushToken(t)
		}
		return p.finishNode(b)
	}
}

// ---- strings --------------------------------------------------------------

func (p *Parser) parseString(indent bool) *Node {
	b := newBuilder(KindString, p.pos)
	k, end := lexOne(p.src, p.pos)
	open := p.bumpRaw(k, end)
	b.pushToken(open)

	for {
		var pk TokKind
		var pend int
		if indent {
			pk, pend = lexIndentStringPart(p.src, p.pos)
		} else {
			pk, pend = lexStringPart(p.src, p.pos)
		}
		switch pk {
		case TokStringClose, TokIndentStringClose:
			t := p.bumpRaw(pk, pend)
			b.pushToken(t)
			return p.finishNode(b)
		case TokEOF:
			p.errs = append(p.errs, p.errAt(p.pos, "unterminated string"))
			return p.finishNode(b)
		case TokInterpOpen:
			openTok := p.bumpRaw(pk, pend)
			ib := newBuilder(KindInterpolation, openTok.Start)
			ib.pushToken(openTok)
			p.skipTrivia(ib)
			inner := p.parseExpr()
			ib.pushNode(inner)
			p.skipTrivia(ib)
			p.expect(ib, TokRBrace)
			interpNode := p.finishNode(ib)
			b.pushNode(interpNode)
		default:
			t := p.bumpRaw(pk, pend)
			b.pushToken(t)
		}
	}
}

// ---- operator precedence chain -------------------------------------------

type opInfo struct {
	prec  int
	right bool
}

var binOpTable = map[string]opInfo{
	"->": {10, true},
	"||": {20, false},
	"&&": {30, false},
	"==": {40, false}, "!=": {40, false},
	"<": {50, false}, "<=": {50, false}, ">": {50, false}, ">=": {50, false},
	"//": {60, true},
	"+":  {70, false}, "-": {70, false},
	"*": {80, false}, "/": {80, false},
	"++": {90, true},
}

const hasAttrPrec = 95

func (p *Parser) parseBinary(minPrec int) *Node {
	left := p.parseUnary()
	for {
		kind, s, e := p.peekSig()
		if kind == TokQuestion {
			if hasAttrPrec < minPrec {
				break
			}
			b := newBuilder(KindExpr, left.Start)
			b.pushNode(left)
			p.nextSigInto(b)
			p.skipTrivia(b)
			ap := p.parseAttrpath()
			b.pushNode(ap)
			left = p.finishNode(b)
			continue
		}
		if kind != TokOp {
			break
		}
		info, ok := binOpTable[string(p.src[s:e])]
		if !ok || info.prec < minPrec {
			break
		}
		b := newBuilder(KindExpr, left.Start)
		b.pushNode(left)
		p.nextSigInto(b)
		p.skipTrivia(b)
		nextMin := info.prec + 1
		if info.right {
			nextMin = info.prec
		}
		right := p.parseBinary(nextMin)
		b.pushNode(right)
		left = p.finishNode(b)
	}
	return left
}

func (p *Parser) parseUnary() *Node {
	kind, s, e := p.peekSig()
	if kind == TokOp {
		op := string(p.src[s:e])
		if op == "-" || op == "!" {
			b := newBuilder(KindExpr, p.pos)
			p.nextSigInto(b)
			p.skipTrivia(b)
			operand := p.parseUnary()
			b.pushNode(operand)
			return p.finishNode(b)
		}
	}
	return p.parseApp()
}

func startsOperand(k TokKind) bool {
	switch k {
	case TokIdent, TokInt, TokFloat, TokPath, TokSearchPath, TokURI,
		TokStringOpen, TokIndentStringOpen, TokLParen, TokLBrace, TokLBracket, TokRec:
		return true
	}
	return false
}

func (p *Parser) parseApp() *Node {
	left := p.parseSelect()
	for {
		kind, _, _ := p.peekSig()
		if !startsOperand(kind) {
			break
		}
		b := newBuilder(KindExpr, left.Start)
		b.pushNode(left)
		p.skipTrivia(b)
		arg := p.parseSelect()
		b.pushNode(arg)
		left = p.finishNode(b)
	}
	return left
}

func (p *Parser) parseSelect() *Node {
	base := p.parsePrimary()
	for {
		kind, _, _ := p.peekSig()
		if kind != TokDot {
			break
		}
		b := newBuilder(KindExpr, base.Start)
		b.pushNode(base)
		p.nextSigInto(b) // .
		p.skipTrivia(b)
		ap := p.parseAttrpath()
		b.pushNode(ap)

		k2, s2, e2 := p.peekSig()
		if k2 == TokIdent && string(p.src[s2:e2]) == "or" {
			p.nextSigInto(b) // or
			p.skipTrivia(b)
			def := p.parseApp()
			b.pushNode(def)
		}
		base = p.finishNode(b)
	}
	return base
}

func (p *Parser) parseListElem() *Node {
	kind, s, e := p.peekSig()
	if kind == TokOp && string(p.src[s:e]) == "-" {
		b := newBuilder(KindExpr, p.pos)
		p.nextSigInto(b)
		p.skipTrivia(b)
		operand := p.parseSelect()
		b.pushNode(operand)
		return p.finishNode(b)
	}
	return p.parseSelect()
}

func (p *Parser) parsePrimary() *Node {
	kind, _, _ := p.peekSig()
	switch kind {
	case TokIdent:
		b := newBuilder(KindIdent, p.pos)
		p.nextSigInto(b)
		return p.finishNode(b)

	case TokInt, TokFloat, TokPath, TokSearchPath, TokURI:
		b := newBuilder(KindExpr, p.pos)
		p.nextSigInto(b)
		return p.finishNode(b)

	case TokStringOpen:
		return p.parseString(false)
	case TokIndentStringOpen:
		return p.parseString(true)

	case TokLParen:
		b := newBuilder(KindExpr, p.pos)
		p.expect(b, TokLParen)
		p.skipTrivia(b)
		inner := p.parseExpr()
		b.pushNode(inner)
		p.skipTrivia(b)
		p.expect(b, TokRParen)
		return p.finishNode(b)

	case TokLBracket:
		b := newBuilder(KindExpr, p.pos)
		p.expect(b, TokLBracket)
		p.skipTrivia(b)
		for {
			kind, _, _ := p.peekSig()
			if kind == TokRBracket || kind == TokEOF {
				break
			}
			startPos := p.pos
			elem := p.parseListElem()
			b.pushNode(elem)
			p.skipTrivia(b)
			if p.pos == startPos {
				break
			}
		}
		p.expect(b, TokRBracket)
		return p.finishNode(b)

	case TokLBrace:
		b := newBuilder(KindAttrSet, p.pos)
		p.expect(b, TokLBrace)
		p.parseBindingsLoop(b, TokRBrace)
		p.skipTrivia(b)
		p.expect(b, TokRBrace)
		return p.finishNode(b)

	case TokRec:
		b := newBuilder(KindAttrSet, p.pos)
		b.recursive = true
		p.nextSigInto(b) // rec
		p.skipTrivia(b)
		p.expect(b, TokLBrace)
		p.parseBindingsLoop(b, TokRBrace)
		p.skipTrivia(b)
		p.expect(b, TokRBrace)
		return p.finishNode(b)

	default:
		p.errs = append(p.errs, p.errAt(p.pos, fmt.Sprintf("unexpected token %s", kind)))
		b := newBuilder(KindExpr, p.pos)
		if kind != TokEOF {
			k, end := lexOne(p.src, p.pos)
			t := p.bumpRaw(k, end)
			b.pushToken(t)
		}
		return p.finishNode(b)
	}
}

// ---- bracket/string-aware lookahead matching ------------------------------

// matchClose scans forward from pos (which must sit right after some opening
// '(', '{' or '[' already counted as depth 1) to the position right after
// its matching closer, correctly skipping over nested brackets and string
// literals (including their interpolations). It is pure lookahead: used only
// to decide whether a `{...}` starts a lambda pattern.
func matchClose(src []byte, pos int) int {
	depth := 1
	for depth > 0 {
		k, end := lexOne(src, pos)
		switch k {
		case TokEOF:
			return pos
		case TokLBrace, TokLParen, TokLBracket, TokInterpOpen:
			depth++
			pos = end
		case TokRBrace, TokRParen, TokRBracket:
			depth--
			pos = end
		case TokStringOpen:
			pos = skipStringForMatch(src, end, false)
		case TokIndentStringOpen:
			pos = skipStringForMatch(src, end, true)
		default:
			pos = end
		}
	}
	return pos
}

func skipStringForMatch(src []byte, pos int, indent bool) int {
	for {
		var k TokKind
		var end int
		if indent {
			k, end = lexIndentStringPart(src, pos)
		} else {
			k, end = lexStringPart(src, pos)
		}
		switch k {
		case TokStringClose, TokIndentStringClose, TokEOF:
			return end
		case TokInterpOpen:
			pos = matchClose(src, end)
		default:
			pos = end
		}
	}
}
