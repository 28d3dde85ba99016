package decision

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Resolver produces the ordered Effective Limit list for a request context.
// pkg/decision/resolver.Resolver satisfies this interface.
type Resolver interface {
	Resolve(ctx context.Context, rc RequestContext) ([]EffectiveLimit, error)
}

// Counter evaluates sliding-window admission for a single effective limit.
// pkg/decision/counter.Counter satisfies this interface.
type Counter interface {
	CheckAndConsume(ctx context.Context, key string, windowSeconds, limit int) (bool, int, error)
}

// Service is the single entry point wiring the Request Validator, Policy
// Resolver, and Decision Composer into one Decide(ctx) operation.
type Service struct {
	resolver Resolver
	counter  Counter
}

// NewService wires a Resolver and Counter into a Service.
func NewService(resolver Resolver, counter Counter) *Service {
	return &Service{resolver: resolver, counter: counter}
}

// Decide validates rc, resolves its effective limits, evaluates every one of
// them, and composes the final Decision. It never short-circuits on the
// first failing limit: every effective limit is evaluated exactly once so
// that the composed decision reflects complete usage, per the evaluate-all
// policy.
func (s *Service) Decide(ctx context.Context, rc RequestContext) (Decision, error) {
	if err := Validate(rc); err != nil {
		return Decision{}, err
	}

	limits, err := s.resolver.Resolve(ctx, rc)
	if err != nil {
		return Decision{}, err
	}
	if len(limits) == 0 {
		return Decision{}, NewNoPolicy("no policy resolved for request context")
	}

	results := make([]evalResult, 0, len(limits))
	for _, limit := range limits {
		allowed, count, err := s.counter.CheckAndConsume(ctx, limit.Key, limit.WindowSeconds, limit.Limit)
		if err != nil {
			return Decision{}, NewStoreUnavailable(fmt.Sprintf("counting store error for key %s", limit.Key), err)
		}
		if count == -1 {
			return Decision{}, NewStoreContention(fmt.Sprintf("exhausted retries for key %s", limit.Key))
		}
		results = append(results, evalResult{limit: limit, allowed: allowed, count: count})
	}

	return compose(results), nil
}

// Validate rejects a request context missing its required identifiers.
func Validate(rc RequestContext) error {
	if strings.TrimSpace(rc.UserID) == "" {
		return NewInvalidRequest("userId is required")
	}
	if strings.TrimSpace(rc.ModelID) == "" {
		return NewInvalidRequest("modelId is required")
	}
	return nil
}

// compose partitions evaluated results into failures and successes and
// builds the final Decision per the composer's selection rules.
func compose(results []evalResult) Decision {
	var failures, successes []evalResult
	for _, r := range results {
		if r.allowed {
			successes = append(successes, r)
		} else {
			failures = append(failures, r)
		}
	}

	if len(failures) > 0 {
		return composeFailure(failures)
	}
	return composeSuccess(successes)
}

func composeFailure(failures []evalResult) Decision {
	sort.SliceStable(failures, func(i, j int) bool {
		fi, fj := failures[i].limit, failures[j].limit
		if fi.Scope.Precedence() != fj.Scope.Precedence() {
			return fi.Scope.Precedence() > fj.Scope.Precedence()
		}
		return fi.PolicyID < fj.PolicyID
	})

	primary := failures[0]
	cause := fmt.Sprintf("%s exceeded: %d/%d in the last %d seconds (key=%s)",
		primary.limit.Label, primary.count, primary.limit.Limit, primary.limit.WindowSeconds, primary.limit.Key)

	if len(failures) > 1 {
		var extra []string
		for _, f := range failures[1:] {
			extra = append(extra, fmt.Sprintf("%s (%d/%d)", f.limit.Label, f.count, f.limit.Limit))
		}
		cause += "; also violated: " + strings.Join(extra, ", ")
	}

	return Decision{
		Allowed:       false,
		Limit:         primary.limit.Limit,
		Count:         primary.count,
		WindowSeconds: primary.limit.WindowSeconds,
		Cause:         cause,
	}
}

func composeSuccess(successes []evalResult) Decision {
	sort.SliceStable(successes, func(i, j int) bool {
		si, sj := successes[i], successes[j]
		if si.remaining() != sj.remaining() {
			return si.remaining() < sj.remaining()
		}
		if si.limit.Scope.Precedence() != sj.limit.Scope.Precedence() {
			return si.limit.Scope.Precedence() > sj.limit.Scope.Precedence()
		}
		return si.limit.PolicyID < sj.limit.PolicyID
	})

	primary := successes[0]

	fulfilled := make([]FulfilledLimit, 0, len(successes))
	// report in resolver order, not remaining-sorted order
	ordered := append([]evalResult(nil), successes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		oi, oj := ordered[i].limit, ordered[j].limit
		if oi.Scope.Precedence() != oj.Scope.Precedence() {
			return oi.Scope.Precedence() > oj.Scope.Precedence()
		}
		return oi.PolicyID < oj.PolicyID
	})
	for _, s := range ordered {
		fulfilled = append(fulfilled, FulfilledLimit{
			Label:         s.limit.Label,
			Key:           s.limit.Key,
			Limit:         s.limit.Limit,
			Count:         s.count,
			WindowSeconds: s.limit.WindowSeconds,
		})
	}

	return Decision{
		Allowed:       true,
		Limit:         primary.limit.Limit,
		Count:         primary.count,
		WindowSeconds: primary.limit.WindowSeconds,
		Fulfilled:     fulfilled,
	}
}
