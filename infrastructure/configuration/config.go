package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"shorts-player/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Refresh     Refresh     `json:"refresh"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type Database struct {
	// Driver selects the video store: mongo, postgres, mssql or mysql.
	Driver string `json:"driver"`
	Mongo  Mongo  `json:"mongo"`
	Psql   Db     `json:"psql"`
	MySql  Db     `json:"mysql"`
	Mssql  Db     `json:"mssql"`
}

type Mongo struct {
	URI      string        `json:"uri"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Enabled reports whether a Redis host was configured.
func (r RedisClient) Enabled() bool {
	return r.Host != ""
}

type YouTube struct {
	APIKey           string        `json:"apiKey"`
	ClientID         string        `json:"clientId"`
	ClientSecret     string        `json:"clientSecret"`
	AccessToken      string        `json:"accessToken"`
	RefreshToken     string        `json:"refreshToken"`
	RequestTimeout   time.Duration `json:"requestTimeout"`
	DailyQuota       int64         `json:"dailyQuota"`
	QuotaWarnRatio   float64       `json:"quotaWarnRatio"`
	EnforceQuota     bool          `json:"enforceQuota"`
	SearchCost       int64         `json:"searchCost"`
	DetailsCostPerID int64         `json:"detailsCostPerId"`
}

// Query is one search issued per refresh.
type Query struct {
	Term            string `json:"term"`
	Category        string `json:"category"`
	VideoCategoryID string `json:"videoCategoryId"`
	VideoDuration   string `json:"videoDuration"`
	PublishedBefore string `json:"publishedBefore"`
	PublishedAfter  string `json:"publishedAfter"`
	RegionCode      string `json:"regionCode"`
	Pages           int    `json:"pages"`
}

type Refresh struct {
	CacheLifetime     time.Duration `json:"cacheLifetime"`
	Schedule          string        `json:"schedule"`
	Queries           []Query       `json:"queries"`
	PublishedCutoff   string        `json:"publishedCutoff"`
	Keywords          []string      `json:"keywords"`
	CheckAvailability bool          `json:"checkAvailability"`
	MaxRecords        int           `json:"maxRecords"`
	RetryAttempts     int           `json:"retryAttempts"`
	RetryDelay        time.Duration `json:"retryDelay"`
	StrictStartup     bool          `json:"strictStartup"`
}

// Cutoff parses PublishedCutoff; nil when unset or invalid.
func (r Refresh) Cutoff() *time.Time {
	if r.PublishedCutoff == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, r.PublishedCutoff)
	if err != nil {
		logger.GetLogger().WithField("publishedCutoff", r.PublishedCutoff).Warn("Invalid publishedCutoff; date filter disabled")
		return nil
	}
	return &t
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

var C Config

func init() {
	LoadConfig()
	Apply(&C)
}

// Apply layers environment overrides and defaults on top of the file config.
func Apply(c *Config) {
	initApp(c)
	initDatabase(c)
	initRedis(c)
	initYouTube(c)
	initRefresh(c)
	initMessaging(c)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initApp(c *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		c.App.SecretKey = v
	}
	// APP_PORT -> PORT -> config -> 5000
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.App.Port = p
		}
	}
	if c.App.Port == 0 {
		c.App.Port = 5000
	}
	if v, ok := getBool("TLS_ENABLED"); ok {
		c.App.TLSEnabled = v
	}
	c.App.TLSCertFile = getConfigValue(c.App.TLSCertFile, "TLS_CERT_FILE", "")
	c.App.TLSKeyFile = getConfigValue(c.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if v := getList("ALLOWED_ORIGINS"); len(v) > 0 {
		c.App.AllowedOrigins = v
	}
	if len(c.App.AllowedOrigins) == 0 {
		c.App.AllowedOrigins = []string{"https://youtube-shorts-player.onrender.com", "http://localhost:5173"}
	}
	if c.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; admin and monitoring routes will reject every request")
	}
}

func initDatabase(c *Config) {
	c.Database.Driver = strings.ToLower(getConfigValue(c.Database.Driver, "DB_DRIVER", "mongo"))

	c.Database.Mongo.URI = getConfigValue(c.Database.Mongo.URI, "MONGODB_URI", "mongodb://localhost:27017")
	c.Database.Mongo.Database = getConfigValue(c.Database.Mongo.Database, "MONGODB_DATABASE", "shorts_player")
	if c.Database.Mongo.Timeout == 0 {
		c.Database.Mongo.Timeout = 60 * time.Second
	}

	c.Database.Psql.Name = getConfigValue(c.Database.Psql.Name, "DB_NAME", "shorts_player")
	c.Database.Psql.Host = getConfigValue(c.Database.Psql.Host, "DB_HOST", "localhost")
	c.Database.Psql.Port = getConfigValue(c.Database.Psql.Port, "DB_PORT", "5432")
	c.Database.Psql.User = getConfigValue(c.Database.Psql.User, "DB_USER", "postgres")
	c.Database.Psql.Password = getConfigValue(c.Database.Psql.Password, "DB_PASSWORD", "")

	c.Database.Mssql.Name = getConfigValue(c.Database.Mssql.Name, "MSSQL_DB_NAME", "shorts_player")
	c.Database.Mssql.Host = getConfigValue(c.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	c.Database.Mssql.Port = getConfigValue(c.Database.Mssql.Port, "MSSQL_PORT", "1433")
	c.Database.Mssql.User = getConfigValue(c.Database.Mssql.User, "MSSQL_USER", "sa")
	c.Database.Mssql.Password = getConfigValue(c.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	c.Database.MySql.Name = getConfigValue(c.Database.MySql.Name, "MYSQL_DB_NAME", "shorts_player")
	c.Database.MySql.Host = getConfigValue(c.Database.MySql.Host, "MYSQL_HOST", "localhost")
	c.Database.MySql.Port = getConfigValue(c.Database.MySql.Port, "MYSQL_PORT", "3306")
	c.Database.MySql.User = getConfigValue(c.Database.MySql.User, "MYSQL_USER", "root")
	c.Database.MySql.Password = getConfigValue(c.Database.MySql.Password, "MYSQL_PASSWORD", "")
}

func initRedis(c *Config) {
	c.RedisClient.Host = getConfigValue(c.RedisClient.Host, "REDIS_HOST", "")
	c.RedisClient.Port = getConfigValue(c.RedisClient.Port, "REDIS_PORT", "6379")
	c.RedisClient.Username = getConfigValue(c.RedisClient.Username, "REDIS_USERNAME", "")
	c.RedisClient.Password = getConfigValue(c.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initYouTube(c *Config) {
	y := &c.YouTube
	y.APIKey = getConfigValue(y.APIKey, "YOUTUBE_API_KEY", "")
	y.ClientID = getConfigValue(y.ClientID, "YOUTUBE_CLIENT_ID", "")
	y.ClientSecret = getConfigValue(y.ClientSecret, "YOUTUBE_CLIENT_SECRET", "")
	y.AccessToken = getConfigValue(y.AccessToken, "YOUTUBE_ACCESS_TOKEN", "")
	y.RefreshToken = getConfigValue(y.RefreshToken, "YOUTUBE_REFRESH_TOKEN", "")
	if v, ok := getInt64("YOUTUBE_DAILY_QUOTA"); ok {
		y.DailyQuota = v
	}
	if v, ok := getBool("YOUTUBE_ENFORCE_QUOTA"); ok {
		y.EnforceQuota = v
	}
	if y.DailyQuota <= 0 {
		y.DailyQuota = 10000
	}
	if y.QuotaWarnRatio <= 0 || y.QuotaWarnRatio > 1 {
		y.QuotaWarnRatio = 0.8
	}
	if y.SearchCost <= 0 {
		y.SearchCost = 100
	}
	if y.DetailsCostPerID <= 0 {
		y.DetailsCostPerID = 1
	}
	if y.RequestTimeout <= 0 {
		y.RequestTimeout = 30 * time.Second
	}
}

func initRefresh(c *Config) {
	r := &c.Refresh
	if v, ok := getDuration("CACHE_LIFETIME"); ok {
		r.CacheLifetime = v
	}
	if r.CacheLifetime <= 0 {
		r.CacheLifetime = 24 * time.Hour
	}
	r.Schedule = getConfigValue(r.Schedule, "REFRESH_SCHEDULE", "0 */6 * * *")
	if v, ok := getBool("REFRESH_STRICT_STARTUP"); ok {
		r.StrictStartup = v
	}
	if v := getList("REFRESH_KEYWORDS"); len(v) > 0 {
		r.Keywords = v
	}
	if len(r.Queries) == 0 {
		r.Queries = []Query{{
			Term:            "music",
			Category:        "classic",
			VideoDuration:   "any",
			PublishedBefore: "2011-01-01T00:00:00Z",
		}}
		if r.PublishedCutoff == "" {
			r.PublishedCutoff = "2010-12-31T23:59:59Z"
		}
	}
	for i := range r.Queries {
		if r.Queries[i].Pages <= 0 {
			r.Queries[i].Pages = 1
		}
	}
	if r.RetryAttempts <= 0 {
		r.RetryAttempts = 3
	}
	if r.RetryDelay <= 0 {
		r.RetryDelay = time.Second
	}
}

func initMessaging(c *Config) {
	c.Pubsub.ProjectID = getConfigValue(c.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	c.Pubsub.Topic = getConfigValue(c.Pubsub.Topic, "PUBSUB_TOPIC", "video-cache-refreshed")
	c.ServiceBus.Namespace = getConfigValue(c.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	c.ServiceBus.Queue = getConfigValue(c.ServiceBus.Queue, "SERVICEBUS_QUEUE", "video-cache-refreshed")
}

// getConfigValue gets value from environment first, then config, then default
func getConfigValue(configValue, envKey, defaultValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if configValue != "" && !strings.HasPrefix(configValue, "YOUR_") {
		return configValue
	}
	return defaultValue
}

func getBool(key string) (bool, bool) {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True":
		return true, true
	case "0", "false", "FALSE", "False":
		return false, true
	}
	return false, false
}

func getInt64(key string) (int64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{"key": key, "value": v}).Warn("Ignoring non-numeric environment value")
		return 0, false
	}
	return n, true
}

// getDuration accepts Go durations ("24h") or plain seconds ("86400").
func getDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d, true
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	logger.GetLogger().WithFields(map[string]interface{}{"key": key, "value": v}).Warn("Ignoring invalid duration")
	return 0, false
}

func getList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
