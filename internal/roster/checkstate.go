package roster

import "github.com/careshift-dev/roster-manager/backend/internal/domain"

type CheckState string

const (
	CheckStateIdle       CheckState = "idle"
	CheckStateChecking   CheckState = "checking"
	CheckStateConflicted CheckState = "conflicted"
	CheckStateClear      CheckState = "clear"
)

// ConflictCheck 是表单冲突校验的显式状态机。
// 员工、班次类型、日期区间或星期几选择发生变化时触发 InputChanged，
// 校验结果回来后触发 Complete 或 Fail。只有处于 Clear 状态时才允许提交。
// 每次 InputChanged 会使代数加一，迟到的旧校验结果会因为代数不匹配而被丢弃。
type ConflictCheck struct {
	state      CheckState
	generation uint64
	reports    []domain.ConflictReport
}

func NewConflictCheck() *ConflictCheck {
	return &ConflictCheck{
		state:   CheckStateIdle,
		reports: make([]domain.ConflictReport, 0),
	}
}

// InputChanged 表示表单输入发生了变化，状态转入 Checking，返回本次校验的代数
func (c *ConflictCheck) InputChanged() uint64 {
	c.generation++
	c.state = CheckStateChecking
	c.reports = c.reports[:0]
	return c.generation
}

// Complete 提交某一代校验的结果。如果结果已经过期则丢弃并返回 false
func (c *ConflictCheck) Complete(generation uint64, reports []domain.ConflictReport) bool {
	if generation != c.generation {
		return false
	}

	c.reports = append(c.reports[:0], reports...)
	if len(c.reports) > 0 {
		c.state = CheckStateConflicted
	} else {
		c.state = CheckStateClear
	}
	return true
}

// Fail 表示某一代校验无法完成。结果未知时不能放行提交，状态回到 Idle 等待重试
func (c *ConflictCheck) Fail(generation uint64) bool {
	if generation != c.generation {
		return false
	}

	c.state = CheckStateIdle
	c.reports = c.reports[:0]
	return true
}

func (c *ConflictCheck) State() CheckState {
	return c.state
}

func (c *ConflictCheck) Reports() []domain.ConflictReport {
	return c.reports
}

// CanSubmit 只有在最近一次校验成功且没有冲突时才返回 true
func (c *ConflictCheck) CanSubmit() bool {
	return c.state == CheckStateClear
}
