package sketch

import (
	"fmt"
	"math"
)

// pivotEpsilon is the smallest pivot magnitude the elimination accepts.
// Rows with no usable pivot are skipped rather than aborting the step, a
// best-effort policy for rank-deficient systems.
const pivotEpsilon = 1e-10

// Solve adjusts the live parameters so that every live constraint's
// residual falls within tolerance, taking up to maxSteps Gauss–Newton
// steps. Each step evaluates the residual vector and the Jacobian of
// symbolic partials, forms the normal matrix J·Jᵀ, solves it by Gaussian
// elimination with partial pivoting, and applies the correction Jᵀy.
//
// It returns whether the sketch converged. Parameters are mutated in
// place; when the solve fails they are left at the last iterate unless
// RestoreOnFail is set. maxSteps of 0 tests convergence without stepping.
//
// A sketch with no live constraints or no live parameters is trivially
// converged.
func (sk *Sketch) Solve(tolerance float64, maxSteps int) bool {
	sk.relink()

	m := len(sk.liveCons)
	n := len(sk.liveParams)
	if m == 0 || n == 0 {
		return true
	}

	for j, p := range sk.liveParams {
		sk.cachedParams[j] = p.V
	}

	converged := false
	for step := 0; ; step++ {
		if sk.evalResiduals(tolerance) {
			converged = true
			break
		}
		if step >= maxSteps {
			break
		}

		for _, c := range sk.liveCons {
			for j, d := range c.dervs {
				c.dervsY[j] = d.eval(sk, nil)
			}
		}

		sk.assembleNormal(m, n)

		rhs := sk.rhs
		for i, c := range sk.liveCons {
			rhs[i] = c.err
		}

		sk.eliminate(m, rhs)
		sk.backSubstitute(m, rhs)

		// Correction: Δ = Jᵀy, applied against the residual.
		for j, p := range sk.liveParams {
			var corr float64
			for i, c := range sk.liveCons {
				corr += sk.itrmSol[i] * c.dervsY[j]
			}
			p.V -= corr
		}
	}

	if !converged && sk.RestoreOnFail {
		for j, p := range sk.liveParams {
			p.V = sk.cachedParams[j]
		}
	}
	return converged
}

// evalResiduals refreshes every live constraint's residual and reports
// whether all of them are within tolerance.
func (sk *Sketch) evalResiduals(tolerance float64) bool {
	converged := true
	for _, c := range sk.liveCons {
		c.err = c.linkedEq.eval(sk, nil)
		if math.Abs(c.err) > tolerance {
			converged = false
		}
	}
	return converged
}

// assembleNormal fills the m×m normal matrix N = J·Jᵀ, stored
// column-major. Exact-zero operands short-circuit the inner products;
// sparse Jacobian rows are common (most constraints touch few
// parameters).
func (sk *Sketch) assembleNormal(m, n int) {
	N := sk.normalMtr
	for r := 0; r < m; r++ {
		rd := sk.liveCons[r].dervsY
		for c := 0; c < m; c++ {
			cd := sk.liveCons[c].dervsY
			var sum float64
			for j := 0; j < n; j++ {
				rv, cv := rd[j], cd[j]
				if rv == 0 || cv == 0 {
					continue
				}
				sum += rv * cv
			}
			N[r+c*m] = sum
		}
	}
}

// eliminate runs Gaussian elimination with partial pivoting on the normal
// matrix and rhs. A column whose best pivot is below pivotEpsilon is
// reported and skipped; the solve continues on the remaining rows.
func (sk *Sketch) eliminate(m int, rhs []float64) {
	N := sk.normalMtr
	for k := 0; k < m; k++ {
		pivot := k
		maxVal := 0.0
		for r := k; r < m; r++ {
			if v := math.Abs(N[r+k*m]); v > maxVal {
				maxVal = v
				pivot = r
			}
		}

		if maxVal < pivotEpsilon {
			fmt.Fprintf(sk.diag(), "sketch: small pivot %g in column %d, skipping row\n", maxVal, k)
			continue
		}

		if pivot != k {
			for col := 0; col < m; col++ {
				N[k+col*m], N[pivot+col*m] = N[pivot+col*m], N[k+col*m]
			}
			rhs[k], rhs[pivot] = rhs[pivot], rhs[k]
		}

		for t := k + 1; t < m; t++ {
			coeff := N[t+k*m] / N[k+k*m]
			for col := 0; col < m; col++ {
				N[t+col*m] -= N[k+col*m] * coeff
			}
			rhs[t] -= rhs[k] * coeff
		}
	}
}

// backSubstitute solves the eliminated system into itrmSol. Degenerate
// diagonal entries zero their solution component and are reported.
func (sk *Sketch) backSubstitute(m int, rhs []float64) {
	N := sk.normalMtr
	y := sk.itrmSol
	for k := m - 1; k >= 0; k-- {
		d := N[k+k*m]
		if math.Abs(d) < pivotEpsilon {
			fmt.Fprintf(sk.diag(), "sketch: back substitution skipped degenerate row %d\n", k)
			y[k] = 0
			continue
		}
		s := rhs[k]
		for l := k + 1; l < m; l++ {
			s -= y[l] * N[k+l*m]
		}
		y[k] = s / d
	}
}
