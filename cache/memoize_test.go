package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFilter struct {
	Term  string
	Class map[string]int
}

func TestMemoize_StructurallyEqualArgsShareEntry(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0

	summary := Memoize(env.svc, "reports", "summary", time.Minute,
		func(ctx context.Context, filter map[string]int) (int, error) {
			calls++
			return filter["a"] + filter["b"], nil
		})

	first, err := summary(ctx, map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)
	second, err := summary(ctx, map[string]int{"b": 2, "a": 1})
	require.NoError(t, err)

	assert.Equal(t, 3, first)
	assert.Equal(t, 3, second)
	assert.Equal(t, 1, calls)
	assert.True(t, env.mr.Exists(`academia_pro:reports:summary:{"a"=int(1),"b"=int(2)}`))
	assert.Equal(t, time.Minute, env.mr.TTL(`academia_pro:reports:summary:{"a"=int(1),"b"=int(2)}`))
}

func TestMemoize_DifferentArgsDifferentEntries(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0

	fetch := Memoize(env.svc, "", "students", 0, func(ctx context.Context, f reportFilter) (string, error) {
		calls++
		return f.Term, nil
	})

	_, _ = fetch(ctx, reportFilter{Term: "spring", Class: map[string]int{"1A": 30}})
	_, _ = fetch(ctx, reportFilter{Term: "autumn", Class: map[string]int{"1A": 30}})
	_, _ = fetch(ctx, reportFilter{Term: "spring", Class: map[string]int{"1A": 30}})

	assert.Equal(t, 2, calls)
	assert.ElementsMatch(t, []string{
		`cache:students:{Term="spring",Class={"1A"=int(30)}}`,
		`cache:students:{Term="autumn",Class={"1A"=int(30)}}`,
	}, env.svc.Store().Keys(ctx, "*"))
}

func TestMemoize_ErrorsAreNotCached(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0
	boom := errors.New("upstream failed")

	fn := Memoize(env.svc, "", "flaky", 0, func(ctx context.Context, id int) (int, error) {
		calls++
		if calls == 1 {
			return 0, boom
		}
		return id, nil
	})

	_, err := fn(ctx, 5)
	assert.Same(t, boom, err)
	got, err := fn(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
	assert.Equal(t, 2, calls)
}

func TestMemoize_NilServiceRunsDirectly(t *testing.T) {
	calls := 0
	fn := Memoize[int, int](nil, "", "double", 0, func(ctx context.Context, n int) (int, error) {
		calls++
		return n * 2, nil
	})

	for i := 0; i < 2; i++ {
		got, err := fn(context.Background(), 4)
		require.NoError(t, err)
		assert.Equal(t, 8, got)
	}
	assert.Equal(t, 2, calls)
}

func TestMemoize_SeparatorsInsideValuesDoNotCollide(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0

	lookup := Memoize(env.svc, "reports", "lookup", time.Minute,
		func(ctx context.Context, filter map[string]string) (int, error) {
			calls++
			return calls, nil
		})

	first, err := lookup(ctx, map[string]string{"a": "1,b=2"})
	require.NoError(t, err)
	second, err := lookup(ctx, map[string]string{"a": "1", "b": "2"})
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
	assert.Equal(t, 2, calls)
}

func TestMemoize_TimeArgumentsGetOwnEntries(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0

	attendance := Memoize(env.svc, "reports", "attendance", time.Minute,
		func(ctx context.Context, day time.Time) (string, error) {
			calls++
			return day.Format("2006-01-02"), nil
		})

	jan, err := attendance(ctx, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	jun, err := attendance(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01", jan)
	assert.Equal(t, "2025-06-01", jun)
	assert.Equal(t, 2, calls)
}

func TestMemoizeWithKey(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()
	calls := 0

	byID := MemoizeWithKey(env.svc, func(id int) string { return "student-profile:" + StableKey(id) }, time.Minute,
		func(ctx context.Context, id int) (string, error) {
			calls++
			return "Ada", nil
		})

	_, _ = byID(ctx, 7)
	name, err := byID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Ada", name)
	assert.Equal(t, 1, calls)
	assert.True(t, env.mr.Exists("academia_pro:cache:student-profile:int(7)"))
}

func TestUserScoped_ExplicitAndContextScope(t *testing.T) {
	env := newTestService(t, Config{})
	calls := 0
	var seenScope string

	dashboard := UserScoped(env.svc, "dashboard", time.Minute,
		func(ctx context.Context, userID string, term string) (string, error) {
			calls++
			seenScope = userID
			return userID + "/" + term, nil
		})

	got, err := dashboard(context.Background(), "42", "spring")
	require.NoError(t, err)
	assert.Equal(t, "42/spring", got)
	assert.True(t, env.mr.Exists(`academia_pro:user:42:dashboard:"spring"`))

	// Same entry resolved from the CacheContext
	ctx := WithUserScope(context.Background(), "42")
	got, err = dashboard(ctx, "", "spring")
	require.NoError(t, err)
	assert.Equal(t, "42/spring", got)
	assert.Equal(t, 1, calls)

	// A context-only scope is handed to the wrapped function
	ctx = WithUserScope(context.Background(), "43")
	_, _ = dashboard(ctx, "", "spring")
	assert.Equal(t, "43", seenScope)
	assert.Equal(t, 2, calls)
}

func TestUserScoped_NoScopeRunsUncached(t *testing.T) {
	env := newTestService(t, Config{})
	calls := 0

	fn := UserScoped(env.svc, "inbox", 0, func(ctx context.Context, userID string, _ struct{}) (int, error) {
		calls++
		return calls, nil
	})

	_, _ = fn(context.Background(), "", struct{}{})
	_, _ = fn(context.Background(), "", struct{}{})

	assert.Equal(t, 2, calls)
	assert.Empty(t, env.mr.Keys())
}

func TestSchoolScoped(t *testing.T) {
	env := newTestService(t, Config{})
	calls := 0

	roster := SchoolScoped(env.svc, "roster", time.Minute,
		func(ctx context.Context, schoolID string, class string) ([]string, error) {
			calls++
			return []string{"Ada", "Grace"}, nil
		})

	ctx := WithSchoolScope(WithUserScope(context.Background(), "1"), "9")
	assert.Equal(t, CacheContext{UserID: "1", SchoolID: "9"}, CacheContextFrom(ctx))

	_, _ = roster(ctx, "", "1A")
	got, err := roster(ctx, "", "1A")
	require.NoError(t, err)
	assert.Equal(t, []string{"Ada", "Grace"}, got)
	assert.Equal(t, 1, calls)
	assert.True(t, env.mr.Exists(`academia_pro:school:9:roster:"1A"`))

	assert.Equal(t, int64(1), env.svc.ClearSchoolCache(ctx, "9"))
}

func TestInvalidateAfter(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()

	require.NoError(t, env.svc.SetUserCache(ctx, "1", "profile", "old", 0))
	require.NoError(t, env.svc.SetUserCache(ctx, "2", "profile", "keep", 0))

	failing := true
	update := InvalidateAfter(env.svc,
		func(userID string) string { return "user:" + userID + ":*" },
		func(ctx context.Context, userID string) (bool, error) {
			if failing {
				return false, errors.New("write rejected")
			}
			return true, nil
		})

	_, err := update(ctx, "1")
	require.Error(t, err)
	assert.True(t, env.mr.Exists("academia_pro:user:1:profile"), "failed writes must not invalidate")

	failing = false
	ok, err := update(ctx, "1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, env.mr.Exists("academia_pro:user:1:profile"))
	assert.True(t, env.mr.Exists("academia_pro:user:2:profile"))
}

func TestInvalidateAfter_LiteralPattern(t *testing.T) {
	env := newTestService(t, Config{})
	ctx := context.Background()

	require.NoError(t, env.svc.Set(ctx, "report:a", 1, WithPrefix("api")))
	reset := InvalidateAfter(env.svc, Pattern[int]("api:*"), func(ctx context.Context, _ int) (int, error) {
		return 0, nil
	})

	_, err := reset(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, env.mr.Keys())
}

func TestInvalidateUserAfter(t *testing.T) {
	env := newTestService(t, Config{})
	require.NoError(t, env.svc.SetUserCache(context.Background(), "5", "profile", "v", 0))

	save := InvalidateUserAfter(env.svc, func(ctx context.Context, userID string, name string) (string, error) {
		return name, nil
	})

	ctx := WithUserScope(context.Background(), "5")
	_, err := save(ctx, "", "Ada")
	require.NoError(t, err)
	assert.Empty(t, env.mr.Keys())
}
