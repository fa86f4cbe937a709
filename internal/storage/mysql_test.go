package storage

import (
	"testing"
	"time"

	"job-search-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompanyCacheUpdatesMergePolicy 合并更新只允许非空新值覆盖，
// 空字段绝不出现在更新集合中，last_fetched始终前移。
func TestCompanyCacheUpdatesMergePolicy(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name        string
		info        *types.CompanyInfo
		wantKeys    []string
		absentKeys  []string
	}{
		{
			name: "全部字段非空时全部覆盖",
			info: &types.CompanyInfo{
				Name:        "Infosys",
				Description: "IT services",
				WebsiteURL:  "https://www.infosys.com",
				Logo:        "https://cdn.example.com/infosys.png",
				Industry:    "Technology",
				Location:    "Mysore",
				TechStack:   []string{"Java", "Go"},
			},
			wantKeys: []string{"name", "description", "website_url", "logo", "industry", "location", "tech_stack", "last_fetched"},
		},
		{
			name: "空字段不参与覆盖",
			info: &types.CompanyInfo{
				Name: "Infosys",
				Logo: "https://cdn.example.com/new-logo.png",
			},
			wantKeys:   []string{"name", "logo", "last_fetched"},
			absentKeys: []string{"description", "website_url", "industry", "location", "tech_stack"},
		},
		{
			name:       "全空记录只前移last_fetched",
			info:       &types.CompanyInfo{},
			wantKeys:   []string{"last_fetched"},
			absentKeys: []string{"name", "description", "website_url", "logo", "industry", "location", "tech_stack"},
		},
		{
			name:       "空技能栈不覆盖已有值",
			info:       &types.CompanyInfo{Name: "Wipro", TechStack: []string{}},
			wantKeys:   []string{"name", "last_fetched"},
			absentKeys: []string{"tech_stack"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			updates, err := companyCacheUpdates(tc.info, now)
			require.NoError(t, err)

			for _, key := range tc.wantKeys {
				assert.Contains(t, updates, key, "应包含字段 %q", key)
			}
			for _, key := range tc.absentKeys {
				assert.NotContains(t, updates, key, "空字段 %q 不应出现在更新集合中", key)
			}
			assert.Equal(t, now, updates["last_fetched"], "last_fetched必须始终前移")
			assert.Len(t, updates, len(tc.wantKeys))
		})
	}
}

// TestCompanyCacheUpdatesValues 非空新值必须以原值写入
func TestCompanyCacheUpdatesValues(t *testing.T) {
	now := time.Now()
	info := &types.CompanyInfo{
		Name:        "Zoho",
		Description: "Product company",
		Location:    "Chennai",
	}

	updates, err := companyCacheUpdates(info, now)
	require.NoError(t, err)
	assert.Equal(t, "Zoho", updates["name"])
	assert.Equal(t, "Product company", updates["description"])
	assert.Equal(t, "Chennai", updates["location"])
}
