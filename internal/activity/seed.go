package activity

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/hitoshi/bukatsu/internal/model"
	"github.com/xeipuuv/gojsonschema"
)

// 組み込みシードデータ。ACTIVITIES_FILEで外部ファイルに差し替え可能。
//
//go:embed activities.json
var embeddedSeed []byte

// シードデータのJSONスキーマ（draft-07）。
// 必須フィールド、正の定員、参加者の活動内一意性（uniqueItems）を強制する。
// 定員と参加者数の大小関係は検証しない（定員は登録時にも強制されないため）。
//
//go:embed activities.schema.json
var seedSchema []byte

// LoadSeed はシードデータを読み込み、スキーマ検証のうえ活動マップを返す。
// pathが空文字列の場合は組み込みシードを使用する。
// 検証に失敗した場合は違反内容をすべて列挙したエラーを返す。
func LoadSeed(path string) (map[string]*model.Activity, error) {
	data := embeddedSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("シードファイルの読み込みに失敗しました: %w", err)
		}
		data = b
	}

	if err := validateSeedData(data); err != nil {
		return nil, err
	}

	var seed map[string]*model.Activity
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("シードデータの解析に失敗しました: %w", err)
	}

	for name, a := range seed {
		a.Name = name
		if a.Participants == nil {
			a.Participants = []string{}
		}
	}

	return seed, nil
}

// ValidateSeed はシードデータを検証し、活動数を返す。
// validateサブコマンドから使用する。
func ValidateSeed(path string) (int, error) {
	seed, err := LoadSeed(path)
	if err != nil {
		return 0, err
	}
	return len(seed), nil
}

// validateSeedData はシードデータをJSONスキーマに対して検証する。
func validateSeedData(data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(seedSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("シードデータのスキーマ検証に失敗しました: %w", err)
	}

	if !result.Valid() {
		var b strings.Builder
		for _, desc := range result.Errors() {
			fmt.Fprintf(&b, "\n  - %s", desc)
		}
		return fmt.Errorf("シードデータがスキーマに適合しません:%s", b.String())
	}

	return nil
}
