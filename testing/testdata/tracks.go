package testdata

// CatTrackerFeature is a single line as logged by a cat tracker app.
var CatTrackerFeature = `{"type":"Feature","properties":{"UUID":"76170e959f967f40","Name":"rye","Time":"2024-12-20T22:19:53.713Z","UnixTime":1734733193,"Version":"gcps/v0.0.0+4","Speed":0.18,"Elevation":1258.4,"Heading":270,"Accuracy":4.1,"Activity":"Stationary","AccelerometerX":0.49,"AccelerometerY":-1,"AccelerometerZ":9.89,"UserAccelerometerX":0,"UserAccelerometerY":-0.03,"UserAccelerometerZ":0.13},"geometry":{"type":"Point","coordinates":[-113.4733911,47.178916]}}`

// CatTrackerFeatureNoHeading has only a UnixTime and an unknown heading.
var CatTrackerFeatureNoHeading = `{"type":"Feature","properties":{"UUID":"76170e959f967f40","Name":"rye","UnixTime":1734733194,"Heading":-1,"Speed":-1,"Accuracy":4},"geometry":{"type":"Point","coordinates":[-113.473419,47.1788913]}}`
