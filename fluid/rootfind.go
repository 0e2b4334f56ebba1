package fluid

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"ductsize/model"
)

// Adjust produces the next starting guess after a failed attempt.
type Adjust func(guess float64) float64

// Halve is the retry policy of the friction factor solve.
func Halve(guess float64) float64 { return guess / 2 }

// Double is the retry policy of the inverse duct sizing solve.
func Double(guess float64) float64 { return guess * 2 }

// Options bounds the numeric solves.
type Options struct {
	MaxRetries    int     // 重新选取初值的最大次数
	MaxSteps      int     // 单次牛顿迭代的最大步数
	XTol          float64 // 相对步长收敛判据
	FrictionGuess float64 // 摩擦系数初值
	DiameterGuess float64 // 管径初值 in.
}

func DefaultOptions() Options {
	return Options{
		MaxRetries:    60,
		MaxSteps:      200,
		XTol:          1e-10,
		FrictionGuess: 10,
		DiameterGuess: 0.01,
	}
}

// Result of a retryable root find. Converged is false only together with a non-nil error.
type Result struct {
	Root      float64
	Guess     float64 // 收敛时使用的初值
	Retries   int
	Steps     int
	Converged bool
}

// maximum step halvings inside one Newton step
const maxDamping = 60

// Solve finds a positive root of fn starting at guess. When an attempt fails the
// guess is replaced by adjust(guess) and the search restarts, at most MaxRetries times.
// fn may return NaN or ±Inf to signal that x is outside its domain.
func Solve(fn func(x float64) float64, guess float64, adjust Adjust, opt Options) (Result, error) {
	res := Result{Guess: guess}
	for res.Retries = 0; res.Retries <= opt.MaxRetries; res.Retries++ {
		root, steps, ok := newton(fn, res.Guess, opt)
		res.Steps = steps
		if ok {
			res.Root = root
			res.Converged = true
			return res, nil
		}
		next := adjust(res.Guess)
		log.WithFields(log.Fields{
			"guess": res.Guess,
			"next":  next,
			"steps": steps,
		}).Debug("root find restarted")
		res.Guess = next
	}
	res.Retries = opt.MaxRetries
	return res, fmt.Errorf("root find from %v after %d retries: %w", guess, opt.MaxRetries, model.ErrConvergence)
}

// newton runs a damped Newton iteration with a central-difference slope.
// Steps that leave the positive axis or produce a non-finite residual are halved.
func newton(fn func(x float64) float64, x float64, opt Options) (float64, int, bool) {
	if !(x > 0) || !finite(x) {
		return x, 0, false
	}
	fx := fn(x)
	if !finite(fx) {
		return x, 0, false
	}
	if fx == 0 {
		return x, 0, true
	}
	for step := 1; step <= opt.MaxSteps; step++ {
		h := 1e-6 * x
		slope := (fn(x+h) - fn(x-h)) / (2 * h)
		if slope == 0 || !finite(slope) {
			return x, step, false
		}

		dx := fx / slope
		next := x - dx
		fnext := fn(next)
		for k := 0; k < maxDamping && (!(next > 0) || !finite(fnext)); k++ {
			dx /= 2
			next = x - dx
			fnext = fn(next)
		}
		if !(next > 0) || !finite(fnext) {
			return x, step, false
		}

		x, fx = next, fnext
		if fx == 0 || math.Abs(dx) <= opt.XTol*math.Max(x, 1) {
			return x, step, true
		}
	}
	return x, opt.MaxSteps, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
