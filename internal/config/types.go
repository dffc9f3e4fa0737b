package config

// File is the parsed channelsync configuration file.
type File struct {
	Degreed   DegreedSettings   `toml:"degreed"`
	Publisher PublisherSettings `toml:"publisher"`
	Learners  []Learner         `toml:"learners"`
	Customers []Customer        `toml:"customers"`
}

// DegreedSettings are shared by every Degreed customer configuration.
type DegreedSettings struct {
	BaseURL                 string `toml:"base_url"`
	OAuthAPIPath            string `toml:"oauth_api_path"`
	CompletionStatusAPIPath string `toml:"completion_status_api_path"`
	CourseAPIPath           string `toml:"course_api_path"`
	UserID                  string `toml:"degreed_user_id"`
	UserPassword            string `toml:"degreed_user_password"`
}

// PublisherSettings selects the audit sink. No brokers means audit events
// are discarded.
type PublisherSettings struct {
	Kafka KafkaSettings `toml:"kafka"`
}

// KafkaSettings configure the Kafka audit publisher.
type KafkaSettings struct {
	Brokers  []string `toml:"brokers"`
	Topic    string   `toml:"topic"`
	ClientID string   `toml:"client_id"`
}

// Learner is a known LMS user.
type Learner struct {
	ID       int64  `toml:"id"`
	Username string `toml:"username"`
	Email    string `toml:"email"`
}

// Customer is an enterprise customer, its enrolled learners and its
// integrated channel configurations.
type Customer struct {
	UUID     string    `toml:"uuid"`
	Name     string    `toml:"name"`
	Learners []string  `toml:"learners"`
	Channels []Channel `toml:"channels"`
}

// Channel is one integrated channel configuration of a customer.
type Channel struct {
	Channel                     string `toml:"channel"`
	Active                      bool   `toml:"active"`
	RealTimeLearnerTransmission bool   `toml:"real_time_learner_transmission"`
	Key                         string `toml:"key"`
	Secret                      string `toml:"secret"`
	DegreedCompanyID            string `toml:"degreed_company_id"`
	ProviderCode                string `toml:"provider_code"`
}
