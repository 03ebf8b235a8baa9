// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// VotableType は投票項目の入力形式を表す。
type VotableType string

const (
	// VotableTypeNumber は範囲付きの数値入力。
	VotableTypeNumber VotableType = "NUMBER"
	// VotableTypeSlider はステップ付きのスライダー入力。
	VotableTypeSlider VotableType = "SLIDER"
	// VotableTypeEnum は選択肢からの単一選択。
	VotableTypeEnum VotableType = "ENUM"
	// VotableTypeBool は "true" / "false" の二択。
	VotableTypeBool VotableType = "BOOL"
)

// Valid は定義済みの投票項目種別かどうかを返す。
func (t VotableType) Valid() bool {
	switch t {
	case VotableTypeNumber, VotableTypeSlider, VotableTypeEnum, VotableTypeBool:
		return true
	default:
		return false
	}
}

// IsNumeric は数値として集計する種別かどうかを返す。
func (t VotableType) IsNumeric() bool {
	return t == VotableTypeNumber || t == VotableTypeSlider
}

// Votable はエンティティに紐づく投票項目を表す。
// Configの具体型はTypeと必ず一致する。
type Votable struct {
	ID        string
	EntityID  string
	Type      VotableType
	Config    VotableConfig
	Label     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VotableConfig は投票項目種別ごとの設定を表すタグ付きユニオン。
// 実装はNumberConfig、SliderConfig、EnumConfig、BoolConfigの4種類に限られる。
type VotableConfig interface {
	// Kind はこの設定が対応する投票項目種別を返す。
	Kind() VotableType
	// Validate は設定値の整合性を検証する。
	Validate() error

	votableConfig()
}

// NumberConfig はNUMBER型の設定。
type NumberConfig struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SliderConfig はSLIDER型の設定。
type SliderConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// EnumConfig はENUM型の設定。Optionsの順序は表示順。
type EnumConfig struct {
	Options []string `json:"options"`
}

// BoolConfig はBOOL型の設定。ラベル未指定時は "Yes" / "No" を使う。
type BoolConfig struct {
	YesLabel string `json:"yesLabel,omitempty"`
	NoLabel  string `json:"noLabel,omitempty"`
}

const (
	defaultYesLabel = "Yes"
	defaultNoLabel  = "No"
)

func (NumberConfig) Kind() VotableType { return VotableTypeNumber }
func (SliderConfig) Kind() VotableType { return VotableTypeSlider }
func (EnumConfig) Kind() VotableType { return VotableTypeEnum }
func (BoolConfig) Kind() VotableType { return VotableTypeBool }

func (NumberConfig) votableConfig() {}
func (SliderConfig) votableConfig() {}
func (EnumConfig) votableConfig() {}
func (BoolConfig) votableConfig() {}

// Validate はmin <= maxであることを検証する。
func (c NumberConfig) Validate() error {
	if c.Min > c.Max {
		return fmt.Errorf("min (%g) は max (%g) 以下である必要があります", c.Min, c.Max)
	}
	return nil
}

// Validate はmin <= maxかつstep > 0であることを検証する。
func (c SliderConfig) Validate() error {
	if c.Min > c.Max {
		return fmt.Errorf("min (%g) は max (%g) 以下である必要があります", c.Min, c.Max)
	}
	if c.Step <= 0 {
		return fmt.Errorf("step は正の数である必要があります: %g", c.Step)
	}
	return nil
}

// Validate は選択肢が1つ以上あり、空文字を含まないことを検証する。
func (c EnumConfig) Validate() error {
	if len(c.Options) == 0 {
		return fmt.Errorf("options を1つ以上指定してください")
	}
	for i, opt := range c.Options {
		if opt == "" {
			return fmt.Errorf("options[%d] が空です", i)
		}
	}
	return nil
}

// Validate はBOOL型では常に成功する。
func (c BoolConfig) Validate() error {
	return nil
}

// Labels はデフォルト値を補完した表示ラベルを返す。
func (c BoolConfig) Labels() (yes, no string) {
	yes, no = c.YesLabel, c.NoLabel
	if yes == "" {
		yes = defaultYesLabel
	}
	if no == "" {
		no = defaultNoLabel
	}
	return yes, no
}

// DecodeVotableConfig はJSONを投票項目種別に対応する設定型にデコードする。
// 空のJSON（nullまたは長さ0）は各型のゼロ値として扱う。
func DecodeVotableConfig(t VotableType, raw []byte) (VotableConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		raw = []byte("{}")
	}

	switch t {
	case VotableTypeNumber:
		var c NumberConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("NUMBER設定のデコードに失敗しました: %w", err)
		}
		return c, nil
	case VotableTypeSlider:
		var c SliderConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("SLIDER設定のデコードに失敗しました: %w", err)
		}
		return c, nil
	case VotableTypeEnum:
		var c EnumConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("ENUM設定のデコードに失敗しました: %w", err)
		}
		return c, nil
	case VotableTypeBool:
		var c BoolConfig
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("BOOL設定のデコードに失敗しました: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("未知の投票項目種別です: %q", t)
	}
}

// EncodeVotableConfig は設定をJSONにエンコードする。
func EncodeVotableConfig(c VotableConfig) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("設定がnilです")
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("投票項目設定のエンコードに失敗しました: %w", err)
	}
	return b, nil
}
