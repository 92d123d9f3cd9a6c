package helper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olusolaa/webstack/internal/core/domain"
)

func TestDefaultAttributeCompare(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name             string
		desired, actual  any
		dExists, aExists bool
		want             bool
	}{
		{"both missing", nil, nil, false, false, true},
		{"equal strings", "t2.micro", "t2.micro", true, true, true},
		{"different strings", "t2.micro", "t3.micro", true, true, false},
		{"missing actual but empty desired", "", nil, true, false, true},
		{"missing actual", "x", nil, true, false, false},
		{"nil map equals empty map", map[string]bool(nil), map[string]bool{}, true, true, true},
		{"int64 differ", int64(3600), int64(60), true, true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := DefaultAttributeCompare(ctx, tc.desired, tc.actual, tc.dExists, tc.aExists)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompareTags(t *testing.T) {
	ctx := context.Background()

	equal, details, err := CompareTagsIgnoringAWS(ctx,
		map[string]string{"Name": "web"},
		map[string]string{"Name": "web", "aws:cloudformation:stack-name": "x"}, true, true)
	require.NoError(t, err)
	assert.True(t, equal)
	assert.Empty(t, details)

	equal, details, err = CompareTagsIgnoringAWS(ctx,
		map[string]string{"Name": "web", "Env": "prod"},
		map[string]string{"Name": "old", "Team": "x"}, true, true)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, "missing tag 'Env'; tag 'Name': expected 'web', got 'old'; unexpected tag 'Team'", details)

	equal, _, err = CompareTagsIgnoringAWS(ctx, map[string]string(nil), map[string]string{}, true, true)
	require.NoError(t, err)
	assert.True(t, equal)

	_, _, err = CompareTagsIgnoringAWS(ctx, 42, map[string]string{}, true, true)
	assert.Error(t, err)
}

func TestCompareStringSlicesUnordered(t *testing.T) {
	ctx := context.Background()

	equal, _, err := CompareStringSlicesUnordered(ctx, []string{"HEAD", "GET"}, []string{"GET", "HEAD"}, true, true)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, details, err := CompareStringSlicesUnordered(ctx, []string{"sg-1"}, []string{"sg-2"}, true, true)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, "missing [sg-1]; unexpected [sg-2]", details)

	equal, _, err = CompareStringSlicesUnordered(ctx, []string{}, nil, true, false)
	require.NoError(t, err)
	assert.True(t, equal)
}

func TestCompareJSONStrings(t *testing.T) {
	ctx := context.Background()

	equal, _, err := CompareJSONStrings(ctx, `{"a":1,"b":[1,2]}`, `{ "b": [1, 2], "a": 1 }`, true, true)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, details, err := CompareJSONStrings(ctx, `{"a":1}`, `{"a":2}`, true, true)
	require.NoError(t, err)
	assert.False(t, equal)
	assert.Equal(t, "Documents differ", details)

	equal, _, err = CompareJSONStrings(ctx, `{"a":1}`, "", true, true)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestCompareAttributes(t *testing.T) {
	rules := []Rule{
		{Key: "image_id", ForcesReplace: true},
		{Key: "security_groups", Compare: CompareStringSlicesUnordered},
		{Key: "tags", Compare: CompareTagsIgnoringAWS},
	}

	t.Run("no differences", func(t *testing.T) {
		attrs := map[string]any{"image_id": "ami-1", "security_groups": []string{"sg-1"}, "tags": map[string]string{}}
		diffs, replace, err := CompareAttributes(context.Background(), attrs, attrs, rules)
		require.NoError(t, err)
		assert.Empty(t, diffs)
		assert.False(t, replace)
	})

	t.Run("in-place difference", func(t *testing.T) {
		diffs, replace, err := CompareAttributes(context.Background(),
			map[string]any{"image_id": "ami-1", "security_groups": []string{"sg-2"}},
			map[string]any{"image_id": "ami-1", "security_groups": []string{"sg-1"}}, rules)
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		assert.Equal(t, "security_groups", diffs[0].AttributeName)
		assert.False(t, replace)
	})

	t.Run("replacing difference", func(t *testing.T) {
		diffs, replace, err := CompareAttributes(context.Background(),
			map[string]any{"image_id": "ami-2"},
			map[string]any{"image_id": "ami-1"}, rules)
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		assert.True(t, diffs[0].ForcesReplace)
		assert.True(t, replace)
	})

	t.Run("unknown desired value", func(t *testing.T) {
		diffs, _, err := CompareAttributes(context.Background(),
			map[string]any{"security_groups": []string{domain.UnknownValue}},
			map[string]any{"security_groups": []string{"sg-1"}}, rules)
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		assert.Equal(t, domain.UnknownValue, diffs[0].Details)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := CompareAttributes(ctx, map[string]any{}, map[string]any{}, rules)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
