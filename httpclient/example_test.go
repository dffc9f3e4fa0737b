package httpclient_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/eh7/edx-enterprise/httpclient"
	"github.com/eh7/edx-enterprise/oauth2client"
)

// ExampleNewBuilder demonstrates building an authenticated client.
func ExampleNewBuilder() {
	client, err := httpclient.NewBuilder().
		WithOAuth2(context.Background(), oauth2client.Config{
			TokenURL:     "https://betatest.degreed.com/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		}).
		WithTimeout(60 * time.Second).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	_, ok := client.Transport.(*httpclient.OAuth2Transport)
	fmt.Printf("timeout: %v, oauth2: %v\n", client.Timeout, ok)
	// Output: timeout: 1m0s, oauth2: true
}
