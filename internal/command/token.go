package command

// TokenKind classifies a scanned token.
type TokenKind string

const (
	TokenEntity        TokenKind = "entity"         // @name
	TokenConstellation TokenKind = "constellation"  // *name
	TokenImpulse       TokenKind = "impulse"        // !word
	TokenTag           TokenKind = "tag"            // #word
	TokenArtifactKey   TokenKind = "artifact_key"   // > key
	TokenArtifactOp    TokenKind = "artifact_op"    // : + -
	TokenArtifactValue TokenKind = "artifact_value" // value after the operator
	TokenTimeModifier  TokenKind = "time_modifier"  // ^value
	TokenQuotedText    TokenKind = "quoted_text"    // "..."
	TokenText          TokenKind = "text"           // anything unrecognized
	TokenVoid          TokenKind = "void"           // artifact value "void"
)

// Span is a half-open byte range [Start, End) in the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is one scanned unit. Value excludes operator markers and quotes;
// Span covers the raw source including them.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Value string    `json:"value"`
	Span  Span      `json:"span"`
}
