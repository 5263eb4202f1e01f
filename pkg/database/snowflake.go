package database

import (
	"crypto/rsa"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/snowflakedb/gosnowflake"
	"github.com/youmark/pkcs8"

	"github.com/globalfaces/phoenix-backend/environments"
	"github.com/globalfaces/phoenix-backend/pkg/logger"
)

// NewSnowflakeDB opens a pooled connection to the warehouse using key-pair
// (JWT) authentication. All entity state lives in Snowflake; there is no
// other persistent store.
func NewSnowflakeDB(cfg environments.SnowflakeConfig) (*sqlx.DB, error) {
	if cfg.User == "" || cfg.Account == "" {
		return nil, fmt.Errorf("SNOW_USER and SNOW_ACCOUNT are required")
	}

	key, err := loadPrivateKey(cfg.PrivateKeyPath, cfg.PrivateKeyPassphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load snowflake private key: %w", err)
	}

	dsn, err := gosnowflake.DSN(&gosnowflake.Config{
		User:          cfg.User,
		Account:       cfg.Account,
		Warehouse:     cfg.Warehouse,
		Role:          cfg.Role,
		Database:      cfg.Database,
		Schema:        cfg.Schema,
		Authenticator: gosnowflake.AuthTypeJwt,
		PrivateKey:    key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build snowflake DSN: %w", err)
	}

	db, err := sqlx.Connect("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to snowflake: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	logger.Infof("Connected to Snowflake (%s.%s)", cfg.Database, cfg.Schema)
	return db, nil
}

// loadPrivateKey reads a PKCS#8 PEM key. Encrypted keys are handled via
// youmark/pkcs8 when a passphrase is set.
func loadPrivateKey(path, passphrase string) (*rsa.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %s: %w", path, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in %s", path)
	}

	var key *rsa.PrivateKey
	if passphrase != "" {
		key, err = pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
	} else {
		key, err = pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse PKCS#8 key: %w", err)
	}

	return key, nil
}

// RunMigrations creates the core tables if they do not exist. Snowflake does
// not enforce PRIMARY KEY constraints; uniqueness of EVENT_LOG.EVENT_ID is
// guaranteed by the MERGE-based insert in the event repository instead.
func RunMigrations(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS FUNDRAISER (
			FUNDRAISER_ID VARCHAR PRIMARY KEY,
			DISPLAY_NAME  VARCHAR,
			EMAIL         VARCHAR,
			ACTIVE        BOOLEAN DEFAULT TRUE,
			CHARITY_ID    VARCHAR,
			CAMPAIGN_ID   VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS CHARITY (
			CHARITY_ID        VARCHAR PRIMARY KEY,
			NAME              VARCHAR,
			BRAND_PRIMARY_HEX VARCHAR,
			LOGO_URL          VARCHAR,
			BLURB             VARCHAR,
			TERMS_URL         VARCHAR,
			COUNTRY           VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS CAMPAIGN (
			CAMPAIGN_ID     VARCHAR PRIMARY KEY,
			CHARITY_ID      VARCHAR,
			NAME            VARCHAR,
			START_DATE      DATE,
			END_DATE        DATE,
			MONTHLY_DEFAULT BOOLEAN,
			PRESET_AMOUNTS  VARCHAR,
			MIN_AMOUNT      NUMBER,
			CURRENCY        VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS PRODUCT (
			PRODUCT_ID      VARCHAR PRIMARY KEY,
			CAMPAIGN_ID     VARCHAR,
			PRODUCT_TYPE    VARCHAR,
			AMOUNT_CENTS    NUMBER,
			CURRENCY        VARCHAR,
			DISPLAY_NAME    VARCHAR,
			STRIPE_PRICE_ID VARCHAR,
			ACTIVE          BOOLEAN DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS SESSION (
			SESSION_ID    VARCHAR PRIMARY KEY,
			FUNDRAISER_ID VARCHAR,
			CHARITY_ID    VARCHAR,
			CAMPAIGN_ID   VARCHAR,
			STATE         VARCHAR,
			DEVICE_ID     VARCHAR,
			CREATED_AT    TIMESTAMP_NTZ
		)`,
		`CREATE TABLE IF NOT EXISTS DONOR (
			DONOR_ID      VARCHAR PRIMARY KEY,
			TITLE         VARCHAR,
			FIRST_NAME    VARCHAR,
			MIDDLE_NAME   VARCHAR,
			LAST_NAME     VARCHAR,
			DOB_DATE      DATE,
			MOBILE_E164   VARCHAR,
			EMAIL         VARCHAR,
			ADDRESS1      VARCHAR,
			ADDRESS2      VARCHAR,
			CITY          VARCHAR,
			REGION        VARCHAR,
			POSTAL_CODE   VARCHAR,
			COUNTRY       VARCHAR,
			CONSENT_SMS   BOOLEAN DEFAULT TRUE,
			CONSENT_EMAIL BOOLEAN DEFAULT TRUE,
			CONSENT_MAIL  BOOLEAN DEFAULT TRUE,
			CREATED_AT    TIMESTAMP_NTZ,
			UPDATED_AT    TIMESTAMP_NTZ
		)`,
		`CREATE TABLE IF NOT EXISTS DONOR_SESSION (
			SESSION_ID    VARCHAR,
			DONOR_ID      VARCHAR,
			FUNDRAISER_ID VARCHAR,
			CHARITY_ID    VARCHAR,
			CAMPAIGN_ID   VARCHAR,
			CREATED_AT    TIMESTAMP_NTZ
		)`,
		`CREATE TABLE IF NOT EXISTS VERIFICATION_SMS (
			VERIF_ID       VARCHAR PRIMARY KEY,
			SESSION_ID     VARCHAR,
			DONOR_ID       VARCHAR,
			SENT_TS        TIMESTAMP_NTZ,
			MESSAGE_BODY   VARCHAR,
			INBOUND_TS     TIMESTAMP_NTZ,
			INBOUND_BODY   VARCHAR,
			RESULT         VARCHAR,
			TWILIO_MSG_SID VARCHAR,
			MOBILE_E164    VARCHAR,
			TO_NUMBER      VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS EVENT_LOG (
			EVENT_ID      VARCHAR PRIMARY KEY,
			SESSION_ID    VARCHAR,
			DONOR_ID      VARCHAR,
			FUNDRAISER_ID VARCHAR,
			EVENT_TYPE    VARCHAR,
			ATTRIBUTES    VARIANT,
			CREATED_AT    TIMESTAMP_NTZ DEFAULT CURRENT_TIMESTAMP()
		)`,
		`CREATE TABLE IF NOT EXISTS SIGNATURE (
			SIGNATURE_ID    VARCHAR PRIMARY KEY,
			DONOR_ID        VARCHAR,
			SESSION_ID      VARCHAR,
			SIGNATURE_IMAGE VARCHAR,
			HASH_SHA256     VARCHAR,
			CAPTURED_AT     TIMESTAMP_NTZ
		)`,
		`CREATE TABLE IF NOT EXISTS PAYMENT (
			PAYMENT_ID             VARCHAR PRIMARY KEY,
			SESSION_ID             VARCHAR,
			DONOR_ID               VARCHAR,
			TYPE                   VARCHAR,
			AMOUNT                 NUMBER,
			CURRENCY               VARCHAR,
			STRIPE_CUSTOMER_ID     VARCHAR,
			STRIPE_SUBSCRIPTION_ID VARCHAR,
			STATUS                 VARCHAR,
			CREATED_AT             TIMESTAMP_NTZ
		)`,
		`CREATE TABLE IF NOT EXISTS PAYMENT_METHOD (
			PM_ID                    VARCHAR PRIMARY KEY,
			DONOR_ID                 VARCHAR,
			STRIPE_CUSTOMER_ID       VARCHAR,
			STRIPE_PAYMENT_METHOD_ID VARCHAR,
			USAGE                    VARCHAR
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Warehouse schema ensured")
	return nil
}

// SeedTestData loads a small fundraiser/charity/campaign/product fixture set
// for local development. Skipped when any fundraiser rows already exist.
func SeedTestData(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM FUNDRAISER"); err != nil {
		return err
	}
	if count > 0 {
		logger.Infof("Warehouse already has %d fundraisers, skipping seed", count)
		return nil
	}

	seed := []struct {
		query string
		args  []any
	}{
		{
			`INSERT INTO CHARITY (CHARITY_ID, NAME, BRAND_PRIMARY_HEX, LOGO_URL, BLURB, TERMS_URL, COUNTRY)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]any{"C1", "Clean Water Initiative", "#1E6FD9", "@PHOENIX_APP_DEV.CORE.ASSETS/logos/C1.png",
				"Safe drinking water for remote communities.", "https://example.org/terms", "CA"},
		},
		{
			`INSERT INTO CAMPAIGN (CAMPAIGN_ID, CHARITY_ID, NAME, START_DATE, END_DATE, MONTHLY_DEFAULT, PRESET_AMOUNTS, MIN_AMOUNT, CURRENCY)
			 VALUES (?, ?, ?, CURRENT_DATE(), DATEADD(year, 1, CURRENT_DATE()), ?, ?, ?, ?)`,
			[]any{"CMP1", "C1", "Spring Street Drive", true, "2000,3500,5000", 1000, "CAD"},
		},
		{
			`INSERT INTO FUNDRAISER (FUNDRAISER_ID, DISPLAY_NAME, EMAIL, ACTIVE, CHARITY_ID, CAMPAIGN_ID)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			[]any{"F001", "Avery Laurent", "avery@example.org", true, "C1", "CMP1"},
		},
		{
			`INSERT INTO PRODUCT (PRODUCT_ID, CAMPAIGN_ID, PRODUCT_TYPE, AMOUNT_CENTS, CURRENCY, DISPLAY_NAME, STRIPE_PRICE_ID, ACTIVE)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"P-CMP1-M20", "CMP1", "MONTHLY", 2000, "CAD", "$20 Monthly", "price_monthly_20", true},
		},
		{
			`INSERT INTO PRODUCT (PRODUCT_ID, CAMPAIGN_ID, PRODUCT_TYPE, AMOUNT_CENTS, CURRENCY, DISPLAY_NAME, STRIPE_PRICE_ID, ACTIVE)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{"P-CMP1-O50", "CMP1", "OTG", 5000, "CAD", "$50 One-Time", "price_otg_50", true},
		},
	}

	for _, s := range seed {
		if _, err := db.Exec(s.query, s.args...); err != nil {
			return fmt.Errorf("failed to seed test data: %w", err)
		}
	}

	logger.Infof("Seeded fundraiser/charity/campaign fixtures")
	return nil
}
