package entity

import "dqdash/internal/entity/common"

// UserUpdates 用户更新字段；未设置的字段保持不变
type UserUpdates struct {
	FullName common.Optional[string]
	IsActive *bool
	IsAdmin  *bool
}

// ToMap 转换为 GORM 更新 map（内部使用）
func (u UserUpdates) ToMap() map[string]interface{} {
	updates := make(map[string]interface{})
	if u.FullName.Set {
		if value, ok := u.FullName.Get(); ok {
			updates["full_name"] = value
		} else {
			updates["full_name"] = nil
		}
	}
	if u.IsActive != nil {
		updates["is_active"] = *u.IsActive
	}
	if u.IsAdmin != nil {
		updates["is_admin"] = *u.IsAdmin
	}
	return updates
}

// IsEmpty 检查是否没有任何更新字段
func (u UserUpdates) IsEmpty() bool {
	return len(u.ToMap()) == 0
}
