package sheets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ContactIntake/config"
	"ContactIntake/pkg/logger"
)

// InputMode 写入值的解析方式
type InputMode string

const (
	// UserEntered 按用户手动输入的方式解析（日期、数字会被自动格式化）
	UserEntered InputMode = "USER_ENTERED"
	// Raw 原样写入字符串
	Raw InputMode = "RAW"
)

// Client 表格追加行接口
type Client interface {
	// AppendRow 在配置好的区域末尾追加一行
	// row: 按列顺序排列的单元格值
	// mode: 值解析方式
	AppendRow(ctx context.Context, row []interface{}, mode InputMode) error
}

// New 根据配置创建客户端，main 中调用一次后注入 service
func New(ctx context.Context, cfg config.Config) (Client, error) {
	var (
		client Client
		err    error
	)

	switch cfg.SheetsProvider {
	case "google":
		client, err = NewGoogleClient(ctx, CredentialsFromConfig(cfg), cfg.SheetID, cfg.SheetName)
	case "mock":
		client = NewMockClient()
	default:
		err = fmt.Errorf("unsupported sheets provider: %s", cfg.SheetsProvider)
	}

	if err != nil {
		logger.Logger.Error("Failed to initialize sheets client", zap.Error(err))
		return nil, err
	}

	logger.Logger.Info("Sheets client initialized successfully",
		zap.String("provider", cfg.SheetsProvider),
		zap.String("sheet", cfg.SheetName),
	)
	return client, nil
}

// Columns 每行固定 6 列：姓名、电话、邮箱、主题、留言、提交时间
const Columns = 6

// A1Range 返回整列区域 '<sheet>'!A:<last>，表名中的单引号需要转义为两个
func A1Range(sheetName string, columns int) string {
	if columns < 1 {
		columns = 1
	}
	return fmt.Sprintf("'%s'!A:%s", strings.ReplaceAll(sheetName, "'", "''"), columnLetter(columns))
}

// columnLetter 1 -> A, 26 -> Z, 27 -> AA
func columnLetter(n int) string {
	var sb []byte
	for n > 0 {
		n--
		sb = append([]byte{byte('A' + n%26)}, sb...)
		n /= 26
	}
	return string(sb)
}
