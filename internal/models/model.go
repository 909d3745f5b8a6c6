package models

import "time"

// TrainedModel is one row of training history, keyed by
// (ModelName, MarketID, Lookback). Re-training overwrites in place.
type TrainedModel struct {
	ModelName    string    `db:"model_name" json:"model_name" validate:"required"`
	MarketID     int       `db:"market_id" json:"market_id" validate:"required"`
	Lookback     int       `db:"lookback" json:"lookback" validate:"required,gte=1"`
	ArtifactPath string    `db:"artifact_path" json:"artifact_path" validate:"required"`
	TrainRows    int       `db:"train_rows" json:"train_rows"`
	TestRows     int       `db:"test_rows" json:"test_rows"`
	MAE          float64   `db:"mae" json:"mae"`
	RMSE         float64   `db:"rmse" json:"rmse"`
	R2           float64   `db:"r2" json:"r2"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ActiveModel is the single pointer per market that the serving path
// dereferences. The last successful training run for a market wins.
type ActiveModel struct {
	MarketID     int       `db:"market_id" json:"market_id"`
	Lookback     int       `db:"lookback" json:"lookback"`
	ModelName    string    `db:"model_name" json:"model_name"`
	ArtifactPath string    `db:"artifact_path" json:"artifact_path"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ModelMetadata is the JSON sibling of a model artifact. FeatureCols is the
// authoritative column order every later evaluation and prediction must
// reuse for that artifact.
type ModelMetadata struct {
	ModelName    string   `json:"model_name"`
	MarketCode   string   `json:"market_code"`
	MarketName   string   `json:"market_name"`
	Lookback     int      `json:"lookback"`
	FeatureCols  []string `json:"feature_cols"`
	TrainRows    int      `json:"train_rows"`
	TestRows     int      `json:"test_rows"`
	MAE          float64  `json:"mae"`
	RMSE         float64  `json:"rmse"`
	R2           float64  `json:"r2"`
	ArtifactPath string   `json:"artifact_path"`
}
