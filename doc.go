// Package sketch solves 2D parametric geometric sketches: collections of
// points, lines, circles, and arcs whose coordinates and dimensions are
// free scalar parameters, constrained by equations that must evaluate to
// zero. Given initial parameter values that generally violate the
// constraints, [Sketch.Solve] adjusts the parameters until every residual
// falls within a caller-supplied tolerance.
//
// # Parameters, entities, constraints
//
// A sketch owns three generational tables: parameters (free scalars),
// entities (tagged shapes referring to parameters and to other entities by
// handle), and constraints (equations). Handles pair a slot index with a
// generation; destroying an object bumps the slot's generation, so stale
// handles are detected rather than misresolved. Destruction never
// cascades: an expression that dereferences a stale handle evaluates that
// subtree to 0 instead of failing.
//
// # Expressions
//
// Constraint equations are immutable expression trees built from the
// factory functions ([Const], [Param], [Add], [Mul], [Sin], [Sqrt], ...).
// Leaves either name a parameter directly or index into the enclosing
// constraint's entity/parameter slot arrays ([ParamAt], [PointXAt],
// [PointYAt], [CircleRAt]); indexed leaves let one tree shape serve many
// constraint instances. Trees evaluate under IEEE-754 double semantics and
// differentiate symbolically ([Derivative]).
//
// # Solving
//
// Solve links the sketch into dense constraint and parameter vectors,
// expands indexed leaves into direct parameter references, and builds one
// symbolic partial derivative per constraint/parameter pair. Each
// iteration evaluates residuals and the Jacobian, forms the normal matrix
// J·Jᵀ, solves it by Gaussian elimination with partial pivoting, and
// applies the least-squares correction. Rank-deficient rows are skipped
// with a diagnostic rather than aborting, so one degenerate constraint
// cannot take down a solve. There is no line search, damping, or global
// optimization; convergence is local and a solution is not guaranteed to
// be unique.
//
// On top of the general-equation core, the package ships the usual named
// constraints (coincident, horizontal, parallel, tangent, distance,
// angle, ...) as builders over the expression factories, plus
// closest-entity queries for editors and a [Renderer] callback contract
// for hosts that draw.
//
// A sketch is not safe for concurrent use. Distinct sketches are fully
// independent.
package sketch
