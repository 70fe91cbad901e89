package plans

import (
	"fmt"

	"github.com/anoixa/image-craft/database/models"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Definition 套餐定义，可以来自内置种子或 plans_file
type Definition struct {
	Name                   string `mapstructure:"name"`
	BasicThumbnailSize     int    `mapstructure:"basic_thumbnail_size"`
	PremiumThumbnailSize   int    `mapstructure:"premium_thumbnail_size"`
	GrantsOriginalAccess   bool   `mapstructure:"grants_original_access"`
	GrantsNonExpiringLinks bool   `mapstructure:"grants_non_expiring_links"`
}

// DefaultDefinitions 内置的三个套餐
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:               models.PlanBasic,
			BasicThumbnailSize: 200,
		},
		{
			Name:                 models.PlanPremium,
			BasicThumbnailSize:   200,
			PremiumThumbnailSize: 400,
			GrantsOriginalAccess: true,
		},
		{
			Name:                   models.PlanEnterprise,
			BasicThumbnailSize:     200,
			PremiumThumbnailSize:   400,
			GrantsOriginalAccess:   true,
			GrantsNonExpiringLinks: true,
		},
	}
}

// LoadDefinitions 从 JSON/YAML 文件读取 plans 列表，path 为空时返回内置套餐
func LoadDefinitions(path string) ([]Definition, error) {
	if path == "" {
		return DefaultDefinitions(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read plans file %s: %w", path, err)
	}

	raw := v.Get("plans")
	if raw == nil {
		return nil, fmt.Errorf("plans file %s has no 'plans' list", path)
	}

	var defs []Definition
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &defs,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode plans file %s: %w", path, err)
	}

	if err := ValidateDefinitions(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// ValidateDefinitions 检查名称非空且不重复、尺寸为正
func ValidateDefinitions(defs []Definition) error {
	if len(defs) == 0 {
		return fmt.Errorf("at least one plan is required")
	}

	seen := make(map[string]struct{}, len(defs))
	for i, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("plan #%d: name is required", i)
		}
		if len(d.Name) > 50 {
			return fmt.Errorf("plan %q: name longer than 50 characters", d.Name)
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("plan %q: duplicate name", d.Name)
		}
		seen[d.Name] = struct{}{}

		if d.BasicThumbnailSize <= 0 {
			return fmt.Errorf("plan %q: basic_thumbnail_size must be positive", d.Name)
		}
		if d.PremiumThumbnailSize < 0 {
			return fmt.Errorf("plan %q: premium_thumbnail_size must not be negative", d.Name)
		}
	}
	return nil
}

// Model 转换为数据库模型
func (d Definition) Model() *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		Name:                   d.Name,
		BasicThumbnailSize:     d.BasicThumbnailSize,
		GrantsOriginalAccess:   d.GrantsOriginalAccess,
		GrantsNonExpiringLinks: d.GrantsNonExpiringLinks,
	}
	if d.PremiumThumbnailSize > 0 {
		size := d.PremiumThumbnailSize
		plan.PremiumThumbnailSize = &size
	}
	return plan
}
