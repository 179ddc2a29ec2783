// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package intro builds the introductory deck on students' social cognition
// of teachers' AI use. The slide text lives in Content so a YAML file can
// replace any part of it without touching the layout.
package intro

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// BulletSlide is a title-and-content slide with one paragraph per bullet.
type BulletSlide struct {
	Title   string   `yaml:"title"`
	Bullets []string `yaml:"bullets"`
	Notes   string   `yaml:"notes,omitempty"`
}

// DiagramSlide is the role-ecology slide: three role nodes, the perception
// path between student and teacher, and the AI tools the teacher uses.
type DiagramSlide struct {
	Title   string `yaml:"title"`
	Caption string `yaml:"caption"`
	Notes   string `yaml:"notes,omitempty"`

	Student   string `yaml:"student"`
	Teacher   string `yaml:"teacher"`
	Observer  string `yaml:"observer"`
	PathLabel string `yaml:"path_label"`
	Tools     string `yaml:"tools"`
}

// Content is the full text of the deck.
type Content struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`

	// Bullets are the bullet slides in order. The diagram slide is
	// inserted after the first DiagramAfter of them.
	Bullets      []BulletSlide `yaml:"bullets"`
	DiagramAfter int           `yaml:"diagram_after"`
	Diagram      DiagramSlide  `yaml:"diagram"`

	References BulletSlide `yaml:"references"`
}

// DefaultContent returns the built-in deck text.
func DefaultContent() Content {
	return Content{
		Title:    "学生对教育者AI使用行为的社会认知\n自我报告与源记忆的证据",
		Subtitle: "当老师用AI时，学生在想什么？",
		Bullets: []BulletSlide{
			{
				Title: "背景：AIEd 的普及与关注点",
				Bullets: []string{
					"AIEd 在课堂与评价中加速普及",
					"研究多关注教学促进与效率提升",
					"自适应学习、即时反馈、负担减轻等",
				},
				Notes: "用 1–2 个熟悉的 AIEd 场景作例子（如作业反馈、备课生成）。" +
					"先给出积极语气，为后文的阻碍与挑战做衔接。",
			},
			{
				Title: "教育中的阻碍更大",
				Bullets: []string{
					"相比其他领域，教育阻碍更明显（Bates et al., 2020）",
					"核心挑战：学生的接受与适应（Renz & Hilbig, 2020）",
					"不仅是技术，更是社会心理与信任问题",
				},
				Notes: "强调“教育不是纯技术问题”，涉及规范、伦理、信任与身份角色。" +
					"此页仅提作者与年份，不展开方法细节。",
			},
			{
				Title: "研究空白：人-人关系如何被AI改变？",
				Bullets: []string{
					"大量研究：关注人-机关系",
					"较少研究：AI使用如何改变人-人关系",
					"课堂里，AI介入学生-教师互动成为新变量",
				},
				Notes: "点出社会知觉的入口：学生如何看待使用AI的教师（能力、公平、可信度、关怀等）。",
			},
			{
				Title: "现有研究的视角与局限",
				Bullets: []string{
					"现有少量研究多从观察者视角（组织情境）",
					"关注同事/上级对员工能力的感知",
					"教育情境中，学生才是被动使用者",
				},
				Notes: "对比：组织（观察者→使用者） vs 教育（被动使用者→主动使用者）。",
			},
			{
				Title: "本研究切入：学生的社会知觉",
				Bullets: []string{
					"目标：从学生视角理解教师AI使用的社会影响",
					"关注：对教师的能力、公平性、可信度等知觉",
					"方法：自我报告与源记忆证据（互补）",
				},
				Notes: "自我报告＝主观评价；源记忆＝对信息来源辨识的客观基础。",
			},
			{
				Title: "关键研究问题",
				Bullets: []string{
					"RQ1 学生如何基于教师的AI使用（透明度/频率/情境）形成对教师能力与公平的知觉？",
					"RQ2 学生的源记忆准确性与其社会知觉是否相关？",
					"RQ3 不同教学情境（讲授/作业反馈/评估）是否存在模式差异？",
				},
				Notes: "篇幅有限可保留 RQ1、RQ2；变量操作化细节放方法部分。",
			},
			{
				Title: "概念澄清",
				Bullets: []string{
					"社会认知/社会知觉：对他人的特质与意图的推断",
					"自我报告：学生主观评价与感受",
					"源记忆：对信息来源的记忆与辨识",
				},
				Notes: "术语门槛一页搞定，降低后续理解成本。每条保持 1 行。",
			},
			{
				Title: "贡献与意义",
				Bullets: []string{
					"视角创新：从观察者转向被动使用者（学生）",
					"机制探索：连接源记忆与社会知觉",
					"实践启示：为教师AI使用的透明度与沟通策略提供依据",
				},
				Notes: "用 1 句话总结贡献与预期影响，便于记忆。",
			},
		},
		DiagramAfter: 3,
		Diagram: DiagramSlide{
			Title:   "角色生态：三类角色，一张图",
			Caption: "学生（被动） → 对教师（主动）的社会知觉；以往多为观察者视角（组织情境）",
			Notes: "图示颜色建议：教师（蓝）、学生（绿）、观察者（灰）。" +
				"箭头高亮本研究“学生→教师”的知觉形成路径。",
			Student:   "学生\n（被动使用者）",
			Teacher:   "教师\n（AI主动使用者）",
			Observer:  "观察者",
			PathLabel: "社会知觉",
			Tools:     "AI 工具与流程",
		},
		References: BulletSlide{
			Title: "参考文献（展示友好格式）",
			Bullets: []string{
				"Bates et al. (2020). [请核对完整题目与期刊]",
				"Renz & Hilbig (2020). [请核对完整题目与期刊]",
			},
			Notes: "PPT中仅列作者与年份；完整参考文献可放在备份页或论文。",
		},
	}
}

// LoadContent reads a YAML file over the built-in content. Keys present in
// the file replace the defaults; lists are replaced whole.
func LoadContent(path string) (Content, error) {
	c := DefaultContent()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("reading content file: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Content{}, fmt.Errorf("parsing content file %s: %w", path, err)
	}
	return c, nil
}
