// file: metrics/cloudwatch.go
package metrics

import (
	"sync"
	"time"

	"ctf-catalog/logger"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

// DefaultNamespace is used when no namespace is configured.
const DefaultNamespace = "CTFCatalog"

// queueSize bounds the data waiting to be published.
const queueSize = 256

// CloudWatch publishes each observation as a single datum. Publishing happens on a
// background goroutine so callers never wait on AWS; data arriving while the queue is
// full are dropped.
type CloudWatch struct {
	client    cloudwatchiface.CloudWatchAPI
	namespace string

	mu     sync.RWMutex
	closed bool
	queue  chan *cloudwatch.MetricDatum
	done   chan struct{}
}

// NewCloudWatch creates a publisher with a client from the default AWS session chain.
func NewCloudWatch(namespace string) (*CloudWatch, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, err
	}
	return NewCloudWatchWithClient(cloudwatch.New(sess), namespace), nil
}

// NewCloudWatchWithClient wraps an existing client and starts the publisher.
func NewCloudWatchWithClient(client cloudwatchiface.CloudWatchAPI, namespace string) *CloudWatch {
	return newCloudWatch(client, namespace, queueSize)
}

func newCloudWatch(client cloudwatchiface.CloudWatchAPI, namespace string, size int) *CloudWatch {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	c := &CloudWatch{
		client:    client,
		namespace: namespace,
		queue:     make(chan *cloudwatch.MetricDatum, size),
		done:      make(chan struct{}),
	}
	go c.publish()
	return c
}

// Close publishes what is queued and stops the publisher. Later observations are dropped.
func (c *CloudWatch) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.queue)
	}
	c.mu.Unlock()
	<-c.done
}

// VerificationOutcome pushes a count of 1 with the outcome as a dimension.
func (c *CloudWatch) VerificationOutcome(outcome string) {
	c.putMetric("Verifications", 1, cloudwatch.StandardUnitCount, "Outcome", outcome)
}

// LivePages pushes the current number of open pages.
func (c *CloudWatch) LivePages(n int) {
	c.putMetric("LivePages", float64(n), cloudwatch.StandardUnitCount, "", "")
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func (c *CloudWatch) putMetric(metricName string, value float64, unit, dimension, dimensionValue string) {
	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(metricName),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if dimension != "" {
		datum.Dimensions = []*cloudwatch.Dimension{{
			Name:  aws.String(dimension),
			Value: aws.String(dimensionValue),
		}}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.queue <- datum:
	default:
		logger.Warn.Printf("[putMetric] CloudWatch queue full, dropping %s", metricName)
	}
}

func (c *CloudWatch) publish() {
	defer close(c.done)
	for datum := range c.queue {
		_, err := c.client.PutMetricData(&cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(c.namespace),
			MetricData: []*cloudwatch.MetricDatum{datum},
		})
		if err != nil {
			logger.Error.Printf("[publish] CloudWatch metric failed (%s): %v", aws.StringValue(datum.MetricName), err)
		}
	}
}
