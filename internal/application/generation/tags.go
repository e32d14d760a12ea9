package generation

import "strings"

const maxTags = 5

// DeriveTags 从提示词派生标签
// 按空白切分，保留长度大于 2 的词，最多取前 5 个，保留原始大小写与重复
func DeriveTags(prompt string) []string {
	words := strings.Fields(prompt)
	tags := make([]string, 0, maxTags)
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		tags = append(tags, w)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
