// Package content is the static portfolio data shown beside the avatar.
package content

type Contact struct {
	Label string
	URL   string
}

type SkillGroup struct {
	Category string
	Skills   []string
}

type Experience struct {
	Company      string
	Role         string
	Location     string
	Period       string
	Achievements []string
}

type Project struct {
	Name        string
	Tech        string
	Period      string
	Description string
	Link        string // empty when the project has no public page
}

type Education struct {
	Institution string
	Degree      string
	Period      string
}

type Portfolio struct {
	Name       string
	Tagline    string
	Roles      []string
	Contacts   []Contact
	Skills     []SkillGroup
	Experience []Experience
	Projects   []Project
	Education  []Education
}

// Roles are the titles cycled by the hero marquee.
var Roles = []string{
	"Full Stack Developer",
	"React Developer",
	"Angular Developer",
	"Next JS Developer",
	"Spring Boot Developer",
}

// Load returns the portfolio. Each call returns a fresh copy.
func Load() *Portfolio {
	return &Portfolio{
		Name:    "Darshan Boyat",
		Tagline: "Building scalable web applications with modern technologies",
		Roles:   append([]string(nil), Roles...),
		Contacts: []Contact{
			{Label: "Email", URL: "mailto:darshboyat@gmail.com"},
			{Label: "Phone", URL: "tel:+919691174714"},
			{Label: "LinkedIn", URL: "https://linkedin.com/in/darshanboyat"},
			{Label: "GitHub", URL: "https://github.com/darshanboyat"},
		},
		Skills: []SkillGroup{
			{Category: "Languages", Skills: []string{"JavaScript", "TypeScript", "Java", "SQL", "NoSQL"}},
			{Category: "Libraries", Skills: []string{"React", "Redux", "ThreeJS", "R3F", "WebGL"}},
			{Category: "Frameworks & Tools", Skills: []string{
				"Angular", "Next.js", "React Native", "SpringBoot", "Hibernate", "SpringAI",
				"Node.js/Express", "Microservices", "Kafka", "GraphQL",
			}},
			{Category: "Testing", Skills: []string{"Jest", "JUnit"}},
			{Category: "Databases", Skills: []string{"MySQL", "PostgreSQL", "MongoDB"}},
			{Category: "DevOps & Cloud", Skills: []string{
				"CI/CD", "Docker", "Kubernetes", "AWS (EC2, Lambda, S3, Amplify, Route53)",
				"Git", "GitHub", "BitBucket",
			}},
		},
		Experience: []Experience{
			{
				Company:  "Curve Metrics",
				Role:     "Software Developer",
				Location: "Nagpur, India",
				Period:   "June 2024 – Present",
				Achievements: []string{
					"Revamped the Genius GmbH website to enhance UX and search/filtering capabilities",
					"Implemented microservices-based architecture to modularize and scale key backend services",
					"Integrated generative AI features to automate content creation and improve personalization",
					"Used React TypeScript components",
				},
			},
			{
				Company:  "Brain Inventory",
				Role:     "Software Developer",
				Location: "Indore, India",
				Period:   "Oct 2022 – June 2024",
				Achievements: []string{
					"SEO-optimized company website using Next.js, integrated with AWS services like S3, Lambda, and Amplify",
					"Integrated WordPress blogs and lead generation tools to boost inbound marketing",
					"Worked across the full stack using Angular, MUI on the frontend, and Node.js and SpringBoot on the backend",
				},
			},
		},
		Projects: []Project{
			{
				Name:        "Genius GmbH",
				Tech:        "TypeScript, Next.js, React, AWS, CommerceTools, SpringBoot",
				Period:      "Jan 2024 – Present",
				Description: "Built a wholesale marketplace with multi-role architecture. Integrated CMS and eCommerce backend using Contentful and CommerceTools.",
			},
			{
				Name:        "Dairydreams.shop",
				Tech:        "Next.js 14, TypeScript, Firebase, TailwindCSS",
				Period:      "Oct 2024 – Dec 2024",
				Description: "Built an eCommerce site with payment gateway, filtering, search, and authentication. (Freelance)",
				Link:        "https://dairydreams.shop",
			},
			{
				Name:        "Brain Inventory",
				Tech:        "Next.js, AWS S3, Amplify, Lambda",
				Period:      "May 2023 – Jan 2024",
				Description: "Developed a lead-gen company website optimized for search engines and performance. Connected a WordPress blog to Next.js frontend with serverless AWS support.",
			},
			{
				Name:        "Numetric.work",
				Tech:        "Angular, TypeScript, Spring Boot, MySQL",
				Period:      "Nov 2023 – Jan 2024",
				Description: "Developed a portfolio and job listing platform for creative professionals. Implemented user dashboards, job filtering, and Firebase-based auth and storage.",
			},
		},
		Education: []Education{
			{
				Institution: "Sagar Institute of Science and Technology",
				Degree:      "B.Tech in Computer Science and Engineering",
				Period:      "Aug 2019 – Aug 2023",
			},
		},
	}
}

// SkillCount is the number of skills across all groups.
func (p *Portfolio) SkillCount() int {
	n := 0
	for _, g := range p.Skills {
		n += len(g.Skills)
	}
	return n
}

// Contact returns the contact with the given label.
func (p *Portfolio) Contact(label string) (Contact, bool) {
	for _, c := range p.Contacts {
		if c.Label == label {
			return c, true
		}
	}
	return Contact{}, false
}

// Summary is the startup log payload.
func (p *Portfolio) Summary() map[string]interface{} {
	return map[string]interface{}{
		"name":       p.Name,
		"roles":      len(p.Roles),
		"contacts":   len(p.Contacts),
		"skills":     p.SkillCount(),
		"experience": len(p.Experience),
		"projects":   len(p.Projects),
		"education":  len(p.Education),
	}
}
