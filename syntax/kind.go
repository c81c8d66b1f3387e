// Package syntax implements a lossless, byte-ranged concrete syntax tree for
// the Nix expression language: a lexer, a recursive-descent parser, and the
// tree-navigation API the dead-code analyzer and editor are built on.
package syntax

// Kind identifies the grammatical role of a syntax Node.
type Kind uint8

const (
	// KindRoot is the single root node of a parsed file.
	KindRoot Kind = iota
	// KindExpr is the catch-all node kind for every Nix construct the
	// dead-code analyzer treats generically: operators, application,
	// if/then/else, with, assert, lists, parenthesized expressions,
	// non-string literals, attribute selection and the rest. Apart from
	// string literals (KindString/KindInterpolation), only scopes, IDENT
	// and ATTRPATH get a distinct kind, since those are the only ones
	// usage analysis must recurse into specially.
	KindExpr
	// KindLambda is `arg: body` or `pattern: body`.
	KindLambda
	// KindPattern is `{ a, b ? e, ... }`.
	KindPattern
	// KindPatEntry is one `a` or `a ? e` inside a Pattern.
	KindPatEntry
	// KindPatBind is the `@ x` / `x @` binder of a Pattern.
	KindPatBind
	// KindIdentParam wraps a plain single-identifier lambda argument.
	KindIdentParam
	// KindLetIn is `let ... in body`.
	KindLetIn
	// KindAttrSet is `{ ... }` or `rec { ... }`.
	KindAttrSet
	// KindAttrpathValue is one `path = value;` entry of an attribute set
	// or let block.
	KindAttrpathValue
	// KindInherit is `inherit a b;` or `inherit (expr) a b;`.
	KindInherit
	// KindInheritFrom wraps the parenthesized source expression of an
	// `inherit (expr) ...` clause.
	KindInheritFrom
	// KindAttrpath is a dotted key path, e.g. `a.b.c`.
	KindAttrpath
	// KindAttrIdent is a plain identifier segment of an Attrpath.
	KindAttrIdent
	// KindAttrDynamic is a `${expr}` segment of an Attrpath.
	KindAttrDynamic
	// KindAttrString is a `"..."` segment of an Attrpath (itself a
	// KindString node, which may contain interpolations).
	KindAttrString
	// KindIdent wraps a single identifier token as a reference/use site.
	KindIdent
	// KindString is a string literal, made up of STRING_FRAGMENT tokens
	// and KindInterpolation children.
	KindString
	// KindInterpolation is one `${ expr }` splice inside a KindString.
	KindInterpolation
)

//go:generate stringer -type=Kind
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "ROOT"
	case KindExpr:
		return "EXPR"
	case KindLambda:
		return "LAMBDA"
	case KindPattern:
		return "PATTERN"
	case KindPatEntry:
		return "PAT_ENTRY"
	case KindPatBind:
		return "PAT_BIND"
	case KindIdentParam:
		return "IDENT_PARAM"
	case KindLetIn:
		return "LET_IN"
	case KindAttrSet:
		return "ATTR_SET"
	case KindAttrpathValue:
		return "ATTRPATH_VALUE"
	case KindInherit:
		return "INHERIT"
	case KindInheritFrom:
		return "INHERIT_FROM"
	case KindAttrpath:
		return "ATTRPATH"
	case KindAttrIdent:
		return "ATTR_IDENT"
	case KindAttrDynamic:
		return "ATTR_DYNAMIC"
	case KindAttrString:
		return "ATTR_STRING"
	case KindIdent:
		return "IDENT"
	case KindString:
		return "STRING"
	case KindInterpolation:
		return "INTERPOLATION"
	default:
		return "UNKNOWN"
	}
}

// TokKind identifies the lexical class of a Token.
type TokKind uint8

const (
	TokWhitespace TokKind = iota
	TokComment
	TokComma
	TokAt
	TokIdent
	TokInt
	TokFloat
	TokPath
	TokSearchPath
	TokURI
	TokStringFragment
	TokStringOpen       // "
	TokStringClose      // "
	TokIndentStringOpen  // ''
	TokIndentStringClose // ''
	TokInterpOpen   // ${
	TokDot
	TokColon
	TokSemi
	TokEq
	TokQuestion
	TokEllipsis
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokLet
	TokIn
	TokRec
	TokWith
	TokAssert
	TokIf
	TokThen
	TokElse
	TokInherit
	TokOp
	TokError
	TokEOF
)

func (k TokKind) String() string {
	switch k {
	case TokWhitespace:
		return "WHITESPACE"
	case TokComment:
		return "COMMENT"
	case TokComma:
		return "COMMA"
	case TokAt:
		return "AT"
	case TokIdent:
		return "IDENT_TOKEN"
	case TokInt:
		return "INT"
	case TokFloat:
		return "FLOAT"
	case TokPath:
		return "PATH"
	case TokSearchPath:
		return "SEARCH_PATH"
	case TokURI:
		return "URI"
	case TokStringFragment:
		return "STRING_FRAGMENT"
	case TokStringOpen:
		return "STRING_OPEN"
	case TokStringClose:
		return "STRING_CLOSE"
	case TokIndentStringOpen:
		return "INDENT_STRING_OPEN"
	case TokIndentStringClose:
		return "INDENT_STRING_CLOSE"
	case TokInterpOpen:
		return "INTERP_OPEN"
	case TokDot:
		return "DOT"
	case TokColon:
		return "COLON"
	case TokSemi:
		return "SEMI"
	case TokEq:
		return "EQ"
	case TokQuestion:
		return "QUESTION"
	case TokEllipsis:
		return "ELLIPSIS"
	case TokLParen:
		return "LPAREN"
	case TokRParen:
		return "RPAREN"
	case TokLBrace:
		return "LBRACE"
	case TokRBrace:
		return "RBRACE"
	case TokLBracket:
		return "LBRACKET"
	case TokRBracket:
		return "RBRACKET"
	case TokLet:
		return "LET"
	case TokIn:
		return "IN"
	case TokRec:
		return "REC"
	case TokWith:
		return "WITH"
	case TokAssert:
		return "ASSERT"
	case TokIf:
		return "IF"
	case TokThen:
		return "THEN"
	case TokElse:
		return "ELSE"
	case TokInherit:
		return "INHERIT_KW"
	case TokOp:
		return "OP"
	case TokError:
		return "ERROR"
	case TokEOF:
		return "EOF"
	default:
		return "UNKNOWN_TOKEN"
	}
}
