// Package degreed implements the Degreed integrated channel.
//
// A Client sends learner completions and course content to the Degreed
// provider API. Every call goes through an httpclient.OAuth2Transport backed by
// the client's own oauth2client.TokenManager, so the bearer token is fetched on
// first use and again whenever it has expired. Responses are returned as a
// Result whatever their status; only token failures and network failures are
// errors.
//
// # Features
//
//   - Create and delete for the completion and content endpoints
//   - Password-grant token exchange with the client credentials as HTTP Basic auth
//   - URLs resolved against the base URL like relative links
//   - Raw []byte/string payloads passed through, other values encoded as JSON
//   - LearnerExporter, LearnerTransmitter and CustomerConfiguration plug the
//     channel into a transmission.Orchestrator
//
// # Quick Start
//
//	client, err := degreed.NewClient(ctx, degreed.ProviderConfig{
//	    BaseURL:      "https://betatest.degreed.com/",
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    Username:     "api-user",
//	    Password:     "api-password",
//	    CompanyID:    "company-id",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := client.DeleteCourseContent(ctx, degreed.ContentDeletePayload{
//	    OrgCode: "company-id",
//	    Courses: []degreed.CourseReference{{ContentID: "course-v1:edX+DemoX+Demo_Course"}},
//	})
package degreed
