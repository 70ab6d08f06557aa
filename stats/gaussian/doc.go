// Package gaussian samples from and evaluates bivariate normal distributions.
//
// Randomness always comes from an injected Source so that callers can
// reproduce a run from a seed and tests can script exact uniform draws.
package gaussian
