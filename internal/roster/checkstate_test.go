package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
)

func TestConflictCheckInitialState(t *testing.T) {
	c := NewConflictCheck()
	assert.Equal(t, CheckStateIdle, c.State())
	assert.False(t, c.CanSubmit())
	assert.Empty(t, c.Reports())
}

func TestConflictCheckClearAllowsSubmit(t *testing.T) {
	c := NewConflictCheck()

	gen := c.InputChanged()
	assert.Equal(t, CheckStateChecking, c.State())
	assert.False(t, c.CanSubmit())

	assert.True(t, c.Complete(gen, nil))
	assert.Equal(t, CheckStateClear, c.State())
	assert.True(t, c.CanSubmit())
}

func TestConflictCheckConflictedBlocksSubmit(t *testing.T) {
	c := NewConflictCheck()

	gen := c.InputChanged()
	reports := []domain.ConflictReport{
		{ConflictingDefinitionID: 1, FacilityName: "内科病区", ConflictingWeekdays: []int32{1}},
	}

	assert.True(t, c.Complete(gen, reports))
	assert.Equal(t, CheckStateConflicted, c.State())
	assert.False(t, c.CanSubmit())
	assert.Equal(t, reports, c.Reports())
}

func TestConflictCheckStaleResultIgnored(t *testing.T) {
	c := NewConflictCheck()

	oldGen := c.InputChanged()
	newGen := c.InputChanged()

	// 旧一代的结果迟到了，必须被丢弃
	assert.False(t, c.Complete(oldGen, nil))
	assert.Equal(t, CheckStateChecking, c.State())
	assert.False(t, c.CanSubmit())

	assert.True(t, c.Complete(newGen, nil))
	assert.True(t, c.CanSubmit())
}

func TestConflictCheckFailReturnsToIdle(t *testing.T) {
	c := NewConflictCheck()

	gen := c.InputChanged()
	assert.True(t, c.Fail(gen))
	// 校验失败时结果未知，不能放行提交
	assert.Equal(t, CheckStateIdle, c.State())
	assert.False(t, c.CanSubmit())

	// 失败后的重试从新的一代开始
	gen = c.InputChanged()
	assert.True(t, c.Complete(gen, nil))
	assert.True(t, c.CanSubmit())
}

func TestConflictCheckInputChangeInvalidatesResult(t *testing.T) {
	c := NewConflictCheck()

	gen := c.InputChanged()
	assert.True(t, c.Complete(gen, nil))
	assert.True(t, c.CanSubmit())

	// 任何输入变化都会使之前的结论失效
	c.InputChanged()
	assert.Equal(t, CheckStateChecking, c.State())
	assert.False(t, c.CanSubmit())
	assert.Empty(t, c.Reports())
}
