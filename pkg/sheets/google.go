package sheets

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"ContactIntake/config"
	"ContactIntake/pkg/logger"
)

// Credentials service account 凭据
type Credentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`
	TokenURI     string `json:"token_uri"`
}

func CredentialsFromConfig(cfg config.Config) Credentials {
	return Credentials{
		Type:         "service_account",
		ProjectID:    cfg.GoogleProjectID,
		PrivateKeyID: cfg.GooglePrivateKeyID,
		PrivateKey:   cfg.GooglePrivateKey,
		ClientEmail:  cfg.GoogleClientEmail,
		ClientID:     cfg.GoogleClientID,
		TokenURI:     google.JWTTokenURL,
	}
}

// GoogleClient Google Sheets 实现
type GoogleClient struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
	rangeA1       string
}

// NewGoogleClient 使用 service account 凭据创建客户端
// token 的获取与刷新交给 oauth2 完成
func NewGoogleClient(ctx context.Context, creds Credentials, spreadsheetID, sheetName string, opts ...option.ClientOption) (*GoogleClient, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	raw, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(raw, gsheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	// token source 的生命周期与进程一致，不能绑定启动时的 ctx
	opts = append([]option.ClientOption{
		option.WithTokenSource(jwtConfig.TokenSource(context.Background())),
	}, opts...)

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newGoogleClient(svc, spreadsheetID, sheetName), nil
}

func newGoogleClient(svc *gsheets.Service, spreadsheetID, sheetName string) *GoogleClient {
	return &GoogleClient{
		values:        svc.Spreadsheets.Values,
		spreadsheetID: spreadsheetID,
		rangeA1:       A1Range(sheetName, Columns),
	}
}

// AppendRow 调用 spreadsheets.values.append
func (c *GoogleClient) AppendRow(ctx context.Context, row []interface{}, mode InputMode) error {
	if mode == "" {
		mode = UserEntered
	}

	body := &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         [][]interface{}{row},
	}

	resp, err := c.values.Append(c.spreadsheetID, c.rangeA1, body).
		ValueInputOption(string(mode)).
		Context(ctx).
		Do()
	if err != nil {
		logger.Logger.Error("Failed to append row",
			zap.String("range", c.rangeA1),
			zap.Error(err),
		)
		return fmt.Errorf("failed to append row: %w", err)
	}

	if resp.Updates != nil {
		logger.Logger.Debug("Row appended",
			zap.String("updated_range", resp.Updates.UpdatedRange),
			zap.Int64("updated_cells", resp.Updates.UpdatedCells),
		)
	}
	return nil
}

func (c *GoogleClient) Range() string {
	return c.rangeA1
}
