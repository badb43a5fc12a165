package utils

import (
	"errors"
	"fmt"

	"github.com/careshift-dev/roster-manager/backend/internal/domain"
	"github.com/careshift-dev/roster-manager/backend/internal/roster"
)

// ValidateWeekdays 检查星期几集合是否合法：非空、取值在 0~6 之间且没有重复
func ValidateWeekdays(weekdays []int32) error {
	if len(weekdays) == 0 {
		return errors.New("必须至少选择一个星期几")
	}

	seen := make(map[int32]bool, len(weekdays))
	for _, day := range weekdays {
		if day < 0 || day > 6 {
			return fmt.Errorf("星期几 %d 不合法，取值必须在 0 到 6 之间", day)
		}
		if seen[day] {
			return fmt.Errorf("星期几 %d 重复出现", day)
		}
		seen[day] = true
	}

	return nil
}

// ValidateDefinitionDates 检查排班规则的日期字段：
// 临时规则必须有结束日期且晚于开始日期，只有永久规则允许没有结束日期
func ValidateDefinitionDates(durationType domain.DurationType, startDate string, endDate *string) error {
	start, err := roster.ParseDate(startDate)
	if err != nil {
		return errors.New("开始日期格式错误")
	}

	switch durationType {
	case domain.DurationTypePermanent:
		if endDate != nil {
			return errors.New("永久规则不允许填写结束日期")
		}
	case domain.DurationTypeTemporary:
		if endDate == nil {
			return errors.New("临时规则必须填写结束日期")
		}
		end, err := roster.ParseDate(*endDate)
		if err != nil {
			return errors.New("结束日期格式错误")
		}
		if !end.After(start) {
			return errors.New("结束日期必须晚于开始日期")
		}
	default:
		return fmt.Errorf("未知的规则类型: %s", durationType)
	}

	return nil
}
