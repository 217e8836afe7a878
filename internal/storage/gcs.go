package storage

import (
	"context"
	"os"

	"gocloud.dev/blob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/gcp"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// readWriteScope limits GCS credentials to object read/write.
const readWriteScope = "https://www.googleapis.com/auth/devstorage.read_write"

// openGCS resolves credentials from t.Token: a readable file is treated as a
// service account key, any other non-empty value as an access token, and an
// empty token falls back to application default credentials.
func openGCS(ctx context.Context, t Target) (*blob.Bucket, error) {
	ts, err := gcsTokenSource(ctx, t.Token)
	if err != nil {
		return nil, err
	}
	client, err := gcp.NewHTTPClient(gcp.DefaultTransport(), ts)
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, client, t.Bucket, nil)
}

func gcsTokenSource(ctx context.Context, token string) (gcp.TokenSource, error) {
	if token == "" {
		creds, err := google.FindDefaultCredentials(ctx, readWriteScope)
		if err != nil {
			return nil, err
		}
		return gcp.CredentialsTokenSource(creds), nil
	}
	if b, err := os.ReadFile(token); err == nil {
		creds, err := google.CredentialsFromJSON(ctx, b, readWriteScope)
		if err != nil {
			return nil, err
		}
		return gcp.CredentialsTokenSource(creds), nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}
