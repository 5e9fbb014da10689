package traverse

// NodeKind is a coarse classification of AST nodes, coarse enough that a
// rewrite transform can subscribe to "all call expressions" or "all
// variable declarations" without needing to know go-fast's exact type
// names. Nodes that don't fall into one of the named buckets are reported
// as KindOther; a transform that needs them matches on the concrete Go
// type inside its callback instead.
type NodeKind int

const (
	KindOther NodeKind = iota

	KindProgram
	KindBlockStatement
	KindExpressionStatement
	KindVariableDeclaration
	KindVariableDeclarator
	KindIfStatement
	KindForStatement
	KindForInStatement
	KindWhileStatement
	KindDoWhileStatement
	KindSwitchStatement
	KindCaseStatement
	KindReturnStatement
	KindBreakStatement
	KindContinueStatement
	KindThrowStatement
	KindTryStatement
	KindLabelledStatement
	KindFunctionDeclaration
	KindClassDeclaration

	KindIdentifier
	KindLiteral
	KindCallExpression
	KindNewExpression
	KindMemberExpression
	KindBinaryExpression
	KindUnaryExpression
	KindUpdateExpression
	KindLogicalExpression
	KindAssignExpression
	KindSequenceExpression
	KindConditionalExpression
	KindArrayLiteral
	KindObjectLiteral
	KindFunctionLiteral
	KindArrowFunctionLiteral
	KindTemplateLiteral
	KindSpreadElement
)

// Visitor holds the optional enter/exit callbacks for one NodeKind. Either
// may be nil. Enter runs before descending into children; Exit runs after.
// A mutation performed in Enter is re-descended into (the replacement node
// is walked next); a mutation performed in Exit is not, matching the
// fixpoint contract's re-run-next-pass semantics.
type Visitor struct {
	Enter func(p *Path)
	Exit  func(p *Path)
}

// VisitorMap dispatches by NodeKind. A transform's Visitor func returns one
// of these, built fresh per ApplyTransform call so closures can capture
// run-local state (an ObjectIndex, a change counter, ...).
type VisitorMap map[NodeKind]Visitor
